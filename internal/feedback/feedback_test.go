package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRating(t *testing.T) {
	for _, in := range []string{"0", "1", "2", "3", "4", "5", " 4 "} {
		r, err := ParseRating(in)
		require.NoError(t, err, in)
		assert.Len(t, string(r), 1)
	}

	for _, in := range []string{"", "6", "-1", "10", "a", "4.5"} {
		_, err := ParseRating(in)
		assert.ErrorIs(t, err, ErrInvalidRating, in)
	}
}

func TestRatingFromStars(t *testing.T) {
	r, err := RatingFromStars(3)
	require.NoError(t, err)
	assert.Equal(t, Rating("3"), r)
	assert.Equal(t, 3, r.Stars())

	_, err = RatingFromStars(6)
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = RatingFromStars(-1)
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestFormPayloadDefaultsToUnrated(t *testing.T) {
	f := NewForm([]string{"papdi_chaat", "nachos", "oreo_roll"})

	assert.Equal(t, Payload{"papdi_chaat": "0", "nachos": "0", "oreo_roll": "0"}, f.Payload())
}

func TestFormRate(t *testing.T) {
	f := NewForm([]string{"papdi_chaat", "nachos", "oreo_roll"})

	require.NoError(t, f.Rate("nachos", 4))
	require.NoError(t, f.Rate("oreo_roll", 5))
	require.NoError(t, f.Rate("oreo_roll", 2))

	assert.Equal(t, Payload{"papdi_chaat": "0", "nachos": "4", "oreo_roll": "2"}, f.Payload())

	require.NoError(t, f.Rate("nachos", 0))
	assert.Equal(t, Unrated, f.Payload()["nachos"])
}

func TestFormRateErrors(t *testing.T) {
	f := NewForm([]string{"nachos"})

	assert.ErrorIs(t, f.Rate("pizza", 3), ErrUnknownDish)
	assert.ErrorIs(t, f.Rate("nachos", 7), ErrInvalidRating)
	assert.Equal(t, Payload{"nachos": "0"}, f.Payload())
}

func TestFormReset(t *testing.T) {
	f := NewForm([]string{"nachos", "sev_snack"})
	require.NoError(t, f.Rate("nachos", 5))

	f.Reset()

	assert.Equal(t, Payload{"nachos": "0", "sev_snack": "0"}, f.Payload())
}

func TestFormDishesIsCopy(t *testing.T) {
	dishes := []string{"nachos"}
	f := NewForm(dishes)
	dishes[0] = "changed"

	got := f.Dishes()
	got[0] = "also changed"
	assert.Equal(t, []string{"nachos"}, f.Dishes())
}

func newTestClient(endpoint string) *Client {
	return NewClient(endpoint, 2*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClientSubmitPostsJSONOnce(t *testing.T) {
	var calls atomic.Int32
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Submit(context.Background(), Payload{"nachos": "5", "oreo_roll": "0"})

	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, Payload{"nachos": "5", "oreo_roll": "0"}, got)
	assert.Equal(t, MessageSuccess, UserMessage(err))
}

func TestClientSubmitIgnoresStatus(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusFound, http.StatusBadRequest, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				if status == http.StatusFound {
					w.Header().Set("Location", "/elsewhere")
				}
				w.WriteHeader(status)
				_, _ = w.Write([]byte("not json at all"))
			}))
			defer srv.Close()

			err := newTestClient(srv.URL).Submit(context.Background(), Payload{"nachos": "1"})
			assert.NoError(t, err)
			assert.GreaterOrEqual(t, calls.Load(), int32(1))
		})
	}
}

func TestClientSubmitNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := newTestClient(url).Submit(context.Background(), Payload{"nachos": "3"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetworkFailure)
	assert.Equal(t, MessageFailure, UserMessage(err))
}

func TestClientSubmitTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, 50*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := c.Submit(context.Background(), Payload{"nachos": "3"})

	assert.ErrorIs(t, err, ErrNetworkFailure)
}

func TestClientSubmitBadEndpoint(t *testing.T) {
	err := newTestClient("://nope").Submit(context.Background(), Payload{})

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNetworkFailure))
}

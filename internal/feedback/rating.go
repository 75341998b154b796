// Package feedback collects per-dish star ratings and posts them to the
// feedback endpoint.
package feedback

import (
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidRating  = goerr.New("invalid rating")
	ErrUnknownDish    = goerr.New("unknown dish")
	ErrNetworkFailure = goerr.New("network failure")
)

const MaxStars = 5

// Rating is a star count as sent on the wire: "0" (unrated) through "5".
type Rating string

const Unrated Rating = "0"

func ParseRating(s string) (Rating, error) {
	s = strings.TrimSpace(s)
	if len(s) != 1 || s[0] < '0' || s[0] > '0'+MaxStars {
		return "", goerr.Wrap(ErrInvalidRating, "rating must be a digit from 0 to 5", goerr.V("rating", s))
	}
	return Rating(s), nil
}

// RatingFromStars converts a star count, 0 clearing the rating.
func RatingFromStars(stars int) (Rating, error) {
	if stars < 0 || stars > MaxStars {
		return "", goerr.Wrap(ErrInvalidRating, "star count out of range", goerr.V("stars", stars))
	}
	return Rating(strconv.Itoa(stars)), nil
}

func (r Rating) Stars() int {
	return int(r[0] - '0')
}

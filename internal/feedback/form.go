package feedback

import "github.com/m-mizutani/goerr/v2"

// Payload maps dish id to rating, every dish of the form present.
type Payload map[string]Rating

// Form holds the star selection for each dish on the page. It is not safe
// for concurrent use.
type Form struct {
	dishes  []string
	ratings map[string]Rating
}

func NewForm(dishes []string) *Form {
	f := &Form{dishes: append([]string(nil), dishes...)}
	f.Reset()
	return f
}

func (f *Form) Dishes() []string {
	return append([]string(nil), f.dishes...)
}

// Rate selects stars for dish. Zero stars clears the selection.
func (f *Form) Rate(dish string, stars int) error {
	if _, ok := f.ratings[dish]; !ok {
		return goerr.Wrap(ErrUnknownDish, "cannot rate dish", goerr.V("dish", dish))
	}
	r, err := RatingFromStars(stars)
	if err != nil {
		return goerr.Wrap(err, "cannot rate dish", goerr.V("dish", dish))
	}
	f.ratings[dish] = r
	return nil
}

// Payload returns the submission body. Unrated dishes are sent as "0".
func (f *Form) Payload() Payload {
	p := make(Payload, len(f.dishes))
	for _, d := range f.dishes {
		p[d] = f.ratings[d]
	}
	return p
}

// Reset clears every selection, as after a successful submission.
func (f *Form) Reset() {
	f.ratings = make(map[string]Rating, len(f.dishes))
	for _, d := range f.dishes {
		f.ratings[d] = Unrated
	}
}

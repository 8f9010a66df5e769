package pipeline

import (
	"fmt"
	"math"
)

// Band is one severity band. A score belongs to the first band whose upper
// bound admits it.
type Band struct {
	Upper     float64
	Inclusive bool
	Label     string
}

func AtMost(upper float64, label string) Band {
	return Band{Upper: upper, Inclusive: true, Label: label}
}

func Below(upper float64, label string) Band {
	return Band{Upper: upper, Inclusive: false, Label: label}
}

// Buckets partitions the real line into named bands. Scores above the last
// band, and NaN, fall into the top label.
type Buckets struct {
	bands []Band
	top   string
	floor bool
}

func NewBuckets(top string, bands ...Band) (*Buckets, error) {
	if top == "" {
		return nil, fmt.Errorf("buckets: top label is required")
	}
	for i := 1; i < len(bands); i++ {
		prev, cur := bands[i-1], bands[i]
		if cur.Upper < prev.Upper || (cur.Upper == prev.Upper && (prev.Inclusive || !cur.Inclusive)) {
			return nil, fmt.Errorf("buckets: band %q does not follow %q", cur.Label, prev.Label)
		}
	}
	cp := make([]Band, len(bands))
	copy(cp, bands)
	return &Buckets{bands: cp, top: top}, nil
}

func MustBuckets(top string, bands ...Band) *Buckets {
	b, err := NewBuckets(top, bands...)
	if err != nil {
		panic(err)
	}
	return b
}

// Floored returns a copy that classifies the integer part of the score.
func (b *Buckets) Floored() *Buckets {
	cp := *b
	cp.floor = true
	return &cp
}

func (b *Buckets) Classify(score float64) string {
	s := score
	if b.floor {
		s = math.Floor(s)
	}
	for _, band := range b.bands {
		if band.Inclusive && s <= band.Upper || !band.Inclusive && s < band.Upper {
			return band.Label
		}
	}
	return b.top
}

// Labels lists every label from lowest to highest band.
func (b *Buckets) Labels() []string {
	out := make([]string, 0, len(b.bands)+1)
	for _, band := range b.bands {
		out = append(out, band.Label)
	}
	return append(out, b.top)
}

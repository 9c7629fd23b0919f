package fundsxml

import (
	"encoding/json"

	"github.com/etnz/fundsxml/date"
	"github.com/shopspring/decimal"
)

// Bucket is a rung of the maturity ladder.
type Bucket int

const (
	BucketExpired Bucket = iota
	BucketUnder1Y
	Bucket1To3Y
	Bucket3To5Y
	Bucket5To10Y
	BucketOver10Y
	BucketNoMaturity
)

// bucketLimits are the exclusive upper bounds, in days after the content
// date, of the dated buckets after BucketExpired.
var bucketLimits = [...]int{365, 1095, 1825, 3650}

func (b Bucket) String() string {
	switch b {
	case BucketExpired:
		return "Expired"
	case BucketUnder1Y:
		return "<1Y"
	case Bucket1To3Y:
		return "1-3Y"
	case Bucket3To5Y:
		return "3-5Y"
	case Bucket5To10Y:
		return "5-10Y"
	case BucketOver10Y:
		return "10Y+"
	case BucketNoMaturity:
		return "no maturity data"
	default:
		return "unknown"
	}
}

func (b Bucket) MarshalJSON() ([]byte, error) { return json.Marshal(b.String()) }

// MaturityBucket classifies a maturity date against the content date using
// half-open day intervals.
func MaturityBucket(content, maturity date.Date) Bucket {
	days := maturity.Sub(content)
	if days < 0 {
		return BucketExpired
	}
	for i, limit := range bucketLimits {
		if days < limit {
			return BucketUnder1Y + Bucket(i)
		}
	}
	return BucketOver10Y
}

// Rung is one bucket of a ladder.
type Rung struct {
	Bucket Bucket          `json:"bucket"`
	Count  int             `json:"count"`
	Value  decimal.Decimal `json:"value"` // in fund currency
	Share  Opt[Percent]    `json:"share"` // of the dated bond positions
}

// Ladder is the maturity distribution of the bond positions of a fund.
type Ladder struct {
	Available  bool   `json:"available"` // false without a content date
	Rungs      []Rung `json:"rungs"`     // every dated bucket, Expired first
	NoMaturity int    `json:"noMaturity"`
	Dated      int    `json:"dated"`
}

// NewLadder builds the ladder of the given bond positions. Positions whose
// bond has no maturity date are counted apart and excluded from the share
// denominator.
func NewLadder(content Opt[date.Date], bonds []Holding, ccy string) Ladder {
	cd, ok := content.Get()
	if !ok {
		return Ladder{}
	}
	l := Ladder{Available: true}
	for b := BucketExpired; b <= BucketOver10Y; b++ {
		l.Rungs = append(l.Rungs, Rung{Bucket: b})
	}
	for _, h := range bonds {
		bond, ok := h.Asset.BondSchedule()
		if !ok {
			continue
		}
		md, ok := bond.MaturityDate.Get()
		if !ok {
			l.NoMaturity++
			continue
		}
		r := &l.Rungs[MaturityBucket(cd, md)]
		r.Count++
		if v, ok := h.Position.TotalValue.In(ccy); ok {
			r.Value = r.Value.Add(v.Value())
		}
		l.Dated++
	}
	for i := range l.Rungs {
		if pct, ok := PercentOf(decimal.NewFromInt(int64(l.Rungs[i].Count)), decimal.NewFromInt(int64(l.Dated))); ok {
			l.Rungs[i].Share = Some(pct)
		}
	}
	return l
}

package accuracy

import "github.com/banshee-data/adapter.report/internal/adapter"

// Dataset names, used as file-name stems for rendered plots.
const (
	CallAccuracyName    = "call_accuracy"
	ChannelAccuracyName = "zmw_accuracy"
)

// CallAccuracy builds the call accuracy table. Detections with a call
// accuracy of zero or less carry no call score and are excluded. Real
// adapters are TruePos, the rest FalsePos.
func CallAccuracy(g adapter.Group) *Table {
	b := NewTableBuilder(CallAccuracyName, "CallAccuracy", TruePos, FalsePos).Grow(g.Len())
	for _, typ := range g.Types() {
		var tp, fp []float64
		for _, r := range g[typ] {
			if r.CallAccuracy <= 0 {
				continue
			}
			if r.IsReal {
				tp = append(tp, r.CallAccuracy)
			} else {
				fp = append(fp, r.CallAccuracy)
			}
		}
		b.Add(typ, TruePos, tp...).Add(typ, FalsePos, fp...)
	}
	return b.Build()
}

// ChannelAccuracy builds the channel accuracy table over real adapters
// only. Hits are TruePos and misses FalseNeg.
func ChannelAccuracy(g adapter.Group) *Table {
	b := NewTableBuilder(ChannelAccuracyName, "ZmwAccuracy", TruePos, FalseNeg).Grow(g.Len())
	for _, typ := range g.Types() {
		var tp, fn []float64
		for _, r := range g[typ] {
			if !r.IsReal {
				continue
			}
			if r.IsHit {
				tp = append(tp, r.ChannelAccuracy)
			} else {
				fn = append(fn, r.ChannelAccuracy)
			}
		}
		b.Add(typ, TruePos, tp...).Add(typ, FalseNeg, fn...)
	}
	return b.Build()
}

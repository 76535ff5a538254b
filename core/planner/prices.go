package planner

import "math"

// priceVector is the shadow price state of the dual ascent. In scalar mode a
// single value is replicated across the horizon; in daily mode each day
// carries its own price. The coordinator owns the vector exclusively and
// hands read-only copies to parcel solves.
type priceVector struct {
	mode   string
	values []float64 // length 1 in scalar mode, horizon in daily mode
}

func newPriceVector(mode string, horizon int) *priceVector {
	n := 1
	if mode == PriceModeDaily {
		n = horizon
	}
	return &priceVector{mode: mode, values: make([]float64, n)}
}

// series materializes the per-day price sequence passed into solves.
func (p *priceVector) series(horizon int) []float64 {
	out := make([]float64, horizon)
	for t := range out {
		if p.mode == PriceModeDaily {
			out[t] = p.values[t]
		} else {
			out[t] = p.values[0]
		}
	}
	return out
}

// mean returns the average price, used for reporting.
func (p *priceVector) mean() float64 {
	var sum float64
	for _, v := range p.values {
		sum += v
	}
	return sum / float64(len(p.values))
}

func (p *priceVector) clone() *priceVector {
	return &priceVector{mode: p.mode, values: append([]float64(nil), p.values...)}
}

// ascend moves the price along the capacity-normalized subgradient: up when
// demand exceeds capacity, down when it is slack, projected onto p >= 0.
func (p *priceVector) ascend(step float64, demand, caps []float64) {
	if p.mode == PriceModeDaily {
		for t := range p.values {
			p.values[t] = project(p.values[t] + step*normGap(demand[t], caps[t]))
		}
		return
	}
	p.values[0] = project(p.values[0] + step*normGap(sum(demand), sum(caps)))
}

// gap returns the duality gap of the current iterate in mm. With a positive
// price any demand-capacity mismatch counts; at a zero price only excess
// demand does, since slack capacity is free. Daily mode takes the worst day.
func (p *priceVector) gap(demand, caps []float64) float64 {
	if p.mode == PriceModeDaily {
		worst := 0.0
		for t := range demand {
			if g := gapOne(p.values[t], demand[t], caps[t]); g > worst {
				worst = g
			}
		}
		return worst
	}
	return gapOne(p.values[0], sum(demand), sum(caps))
}

func gapOne(price, demand, cap float64) float64 {
	diff := demand - cap
	if price <= 0 {
		return math.Max(0, diff)
	}
	return math.Abs(diff)
}

func normGap(demand, cap float64) float64 {
	if cap <= 0 {
		return demand
	}
	return (demand - cap) / cap
}

func project(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

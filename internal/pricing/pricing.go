// Package pricing maps the shopper's emotional state to a discretionary
// discount. Higher discounts de-escalate negative affect; a small
// retention offer goes to happy shoppers; neutral gets nothing.
package pricing

import "shopvoice/internal/emotion"

// Offer is recomputed per qualifying request and never stored, so
// repeated requests in one session cannot accumulate.
type Offer struct {
	Percentage int           `json:"percentage"`
	Reason     emotion.State `json:"reason"`
}

var table = map[emotion.State]int{
	emotion.Frustrated: 15,
	emotion.Confused:   10,
	emotion.Happy:      5,
	emotion.Neutral:    0,
}

func ForEmotion(state emotion.State) Offer {
	return Offer{Percentage: table[state], Reason: state}
}

// Apply returns the total after the offer's percentage reduction.
func (o Offer) Apply(total float64) float64 {
	return total * (1 - float64(o.Percentage)/100)
}

// Package engagement считает оценку вовлечённости компании по доле прочитанных сообщений.
package engagement

import "math"

// Band - полоса, в которую попадает доля прочитанных сообщений.
type Band string

const (
	BandNone   Band = "none"
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

const (
	highThreshold   = 0.8
	mediumThreshold = 0.5

	// нижняя граница оценки в полосе high
	highFloor = 0.6
)

// Summary - всё, что показывает дашборд по одной компании.
type Summary struct {
	Sent  int64   `json:"sent"`
	Read  int64   `json:"read"`
	Ratio float64 `json:"ratio"`
	Score float64 `json:"score"`
	Band  Band    `json:"band"`
}

// Ratio возвращает read/sent в пределах [0, 1]; при sent <= 0 результат 0.
func Ratio(sent, read int64) float64 {
	if sent <= 0 {
		return 0
	}
	if read < 0 {
		read = 0
	}
	if read > sent {
		read = sent
	}
	return float64(read) / float64(sent)
}

// Score - кусочно-линейная интерполяция доли прочитанных по трём полосам:
//
//	ratio >= 0.8        -> [0.6, 1]
//	0.5 <= ratio < 0.8  -> [0, 0.6)
//	ratio < 0.5         -> [-1, 0)
//
// Без отправленных сообщений оценка нейтральна (0).
func Score(sent, read int64) float64 {
	if sent <= 0 {
		return 0
	}
	ratio := Ratio(sent, read)

	var score float64
	switch {
	case ratio >= highThreshold:
		score = highFloor + (ratio-highThreshold)/(1-highThreshold)*(1-highFloor)
	case ratio >= mediumThreshold:
		score = (ratio - mediumThreshold) / (highThreshold - mediumThreshold) * highFloor
	default:
		score = -1 + ratio/mediumThreshold
	}
	return clamp(score)
}

func BandOf(sent, read int64) Band {
	if sent <= 0 {
		return BandNone
	}
	ratio := Ratio(sent, read)
	switch {
	case ratio >= highThreshold:
		return BandHigh
	case ratio >= mediumThreshold:
		return BandMedium
	default:
		return BandLow
	}
}

func Summarize(sent, read int64) Summary {
	return Summary{
		Sent:  sent,
		Read:  read,
		Ratio: round(Ratio(sent, read)),
		Score: round(Score(sent, read)),
		Band:  BandOf(sent, read),
	}
}

// Merge складывает счётчики нескольких компаний и пересчитывает оценку.
func Merge(items ...Summary) Summary {
	var sent, read int64
	for _, it := range items {
		sent += it.Sent
		read += it.Read
	}
	return Summarize(sent, read)
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}

package statuses

// Game lifecycle. A game leaves "active" through two consecutive passes
// (to "scoring") or a resignation (straight to "finished"); "scoring" only
// ends by a finalized score or a resignation.
const (
	StatusActive   = "active"
	StatusScoring  = "scoring"
	StatusFinished = "finished"
)

const (
	ColorBlack = "black"
	ColorWhite = "white"
)

// ResultDraw is reported by the scoring engine when areas are equal.
const ResultDraw = "draw"

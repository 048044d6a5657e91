// Package queue maps numeric queue ids to game-mode categories.
package queue

type Category string

const (
	Ranked Category = "Ranked"
	Normal Category = "Normal"
	ARAM   Category = "ARAM"
	Arena  Category = "Arena"
	Other  Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{Ranked, Normal, ARAM, Arena, Other}

const (
	RankedSolo = 420
	RankedFlex = 440
)

var categoryByQueue = map[int]Category{
	RankedSolo: Ranked,
	RankedFlex: Ranked,

	400: Normal, // draft pick
	430: Normal, // blind pick
	480: Normal, // swiftplay
	490: Normal, // quickplay

	450:  ARAM,
	100:  ARAM, // butcher's bridge
	720:  ARAM, // aram clash
	2400: ARAM, // aram: mayhem

	1700: Arena,
}

// Classify never fails; ids missing from the table (customs, co-op vs AI, rotating modes,
// anything new) are Other.
func Classify(queueID int) Category {
	if c, ok := categoryByQueue[queueID]; ok {
		return c
	}
	return Other
}

var queueNames = map[int]string{
	RankedSolo: "Ranked Solo/Duo",
	RankedFlex: "Ranked Flex",
	400:        "Normal Draft",
	430:        "Normal Blind",
	480:        "Swiftplay",
	490:        "Quickplay",
	450:        "ARAM",
	1700:       "Arena",
}

// Name is a short human label for the queue, falling back to the category.
func Name(queueID int) string {
	if n, ok := queueNames[queueID]; ok {
		return n
	}
	return string(Classify(queueID))
}

package poker

import (
	"errors"
	"sort"
)

// Category classifies a 5-card hand. Higher is stronger.
type Category int

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// HandValue is a totally ordered hand strength. Larger Value beats
// smaller regardless of input card order.
type HandValue struct {
	Value    int64
	Category Category
}

// Beats reports whether h outranks other. Equal values tie.
func (h HandValue) Beats(other HandValue) bool {
	return h.Value > other.Value
}

var (
	errNeedSeven = errors.New("poker: evaluator needs exactly 7 cards")
	errNeedFive  = errors.New("poker: evaluator needs exactly 5 cards")
)

// BestOfSeven enumerates all 21 five-card combinations of the given 7
// cards and returns the strongest.
func BestOfSeven(seven []Card) (HandValue, error) {
	if len(seven) != 7 {
		return HandValue{}, errNeedSeven
	}

	best := HandValue{Value: -1}
	var five [5]Card
	for a := 0; a < 3; a++ {
		for b := a + 1; b < 4; b++ {
			for c := b + 1; c < 5; c++ {
				for d := c + 1; d < 6; d++ {
					for e := d + 1; e < 7; e++ {
						five[0] = seven[a]
						five[1] = seven[b]
						five[2] = seven[c]
						five[3] = seven[d]
						five[4] = seven[e]
						hv, err := EvaluateFive(five[:])
						if err != nil {
							return HandValue{}, err
						}
						if hv.Value > best.Value {
							best = hv
						}
					}
				}
			}
		}
	}
	return best, nil
}

// EvaluateFive classifies exactly 5 cards and encodes the result as a
// comparable value: the category occupies the top bits, followed by up to
// five 4-bit tie-break rank fields in priority order.
func EvaluateFive(five []Card) (HandValue, error) {
	if len(five) != 5 {
		return HandValue{}, errNeedFive
	}

	cards := make([]Card, 5)
	copy(cards, five)
	sort.Slice(cards, func(i, j int) bool { return cards[i].Rank > cards[j].Rank })

	flush := isFlush(cards)
	straightHigh := straightHighRank(cards)
	straight := straightHigh != 0

	groups := rankGroups(cards)

	switch {
	case straight && flush:
		return pack(StraightFlush, straightHigh), nil

	case groups[0].count == 4:
		quad := groups[0].rank
		kicker := highestExcluding(cards, quad)
		return pack(FourOfAKind, quad, kicker), nil

	case groups[0].count == 3 && len(groups) > 1 && groups[1].count == 2:
		return pack(FullHouse, groups[0].rank, groups[1].rank), nil

	case flush:
		return pack(Flush, ranksDesc(cards)...), nil

	case straight:
		return pack(Straight, straightHigh), nil

	case groups[0].count == 3:
		trips := groups[0].rank
		kickers := topKickersExcluding(cards, 2, trips)
		return pack(ThreeOfAKind, trips, kickers[0], kickers[1]), nil

	case groups[0].count == 2 && len(groups) > 1 && groups[1].count == 2:
		highPair, lowPair := groups[0].rank, groups[1].rank
		kicker := highestExcluding(cards, highPair, lowPair)
		return pack(TwoPair, highPair, lowPair, kicker), nil

	case groups[0].count == 2:
		pair := groups[0].rank
		kickers := topKickersExcluding(cards, 3, pair)
		return pack(OnePair, pair, kickers[0], kickers[1], kickers[2]), nil

	default:
		return pack(HighCard, ranksDesc(cards)...), nil
	}
}

func isFlush(cards []Card) bool {
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			return false
		}
	}
	return true
}

// straightHighRank returns the high rank of the straight formed by the
// cards, or 0 if they do not form one. The wheel A-2-3-4-5 counts as a
// 5-high straight, not ace-high.
func straightHighRank(cards []Card) int {
	seen := map[int]bool{}
	ranks := make([]int, 0, 5)
	for _, c := range cards {
		if !seen[c.Rank] {
			seen[c.Rank] = true
			ranks = append(ranks, c.Rank)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))

	if seen[14] && seen[5] && seen[4] && seen[3] && seen[2] {
		return 5
	}
	if len(ranks) < 5 {
		return 0
	}
	for i := 0; i < 4; i++ {
		if ranks[i]-1 != ranks[i+1] {
			return 0
		}
	}
	return ranks[0]
}

type rankGroup struct {
	count int
	rank  int
}

// rankGroups returns (count, rank) groups sorted by count desc, rank desc.
func rankGroups(cards []Card) []rankGroup {
	counts := map[int]int{}
	for _, c := range cards {
		counts[c.Rank]++
	}
	groups := make([]rankGroup, 0, len(counts))
	for r, n := range counts {
		groups = append(groups, rankGroup{count: n, rank: r})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})
	return groups
}

func ranksDesc(cards []Card) []int {
	ranks := make([]int, len(cards))
	for i, c := range cards {
		ranks[i] = c.Rank
	}
	return ranks
}

// highestExcluding returns the highest rank present after excluding the
// given ranks entirely. Cards must already be sorted rank-descending.
func highestExcluding(cards []Card, exclude ...int) int {
	for _, c := range cards {
		skip := false
		for _, ex := range exclude {
			if c.Rank == ex {
				skip = true
				break
			}
		}
		if !skip {
			return c.Rank
		}
	}
	return 0
}

func topKickersExcluding(cards []Card, n int, exclude ...int) []int {
	kickers := make([]int, 0, n)
	for _, c := range cards {
		skip := false
		for _, ex := range exclude {
			if c.Rank == ex {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		kickers = append(kickers, c.Rank)
		if len(kickers) == n {
			break
		}
	}
	return kickers
}

// pack encodes the category and up to five tie-break ranks. Four bits per
// rank field is enough since ranks are bounded by 14.
func pack(cat Category, ranks ...int) HandValue {
	v := int64(cat) << 28
	shift := 24
	for i := 0; i < len(ranks) && i < 5; i++ {
		v |= (int64(ranks[i]) & 0xF) << shift
		shift -= 4
	}
	return HandValue{Value: v, Category: cat}
}

package common

// AuctionStatus is the lifecycle state of an auction.
type AuctionStatus string

const (
	Draft     AuctionStatus = "Draft"
	Published AuctionStatus = "Published"
	Active    AuctionStatus = "Active"
	Extended  AuctionStatus = "Extended"
	Ended     AuctionStatus = "Ended"
	Awarded   AuctionStatus = "Awarded"
	NoBids    AuctionStatus = "NoBids"
	Cancelled AuctionStatus = "Cancelled"
)

// Terminal reports whether no further transition is possible.
func (s AuctionStatus) Terminal() bool {
	return s == Awarded || s == NoBids || s == Cancelled
}

// Open reports whether the auction accepts bids in this state.
func (s AuctionStatus) Open() bool {
	return s == Active || s == Extended
}

// CanTransition reports whether the move s -> to is legal.
// Extended is re-entrant: an already extended auction may be extended again.
func (s AuctionStatus) CanTransition(to AuctionStatus) bool {
	if to == Cancelled {
		return !s.Terminal()
	}

	switch s {
	case Draft:
		return to == Published || to == Active
	case Published:
		return to == Active
	case Active:
		return to == Extended || to == Ended || to == NoBids
	case Extended:
		return to == Extended || to == Ended || to == NoBids
	case Ended:
		return to == Awarded
	}

	return false
}

func ValidAuctionStatus(s AuctionStatus) bool {
	switch s {
	case Draft, Published, Active, Extended, Ended, Awarded, NoBids, Cancelled:
		return true
	default:
		return false
	}
}

// BidStatus is the state of a seller's standing offer.
type BidStatus string

const (
	ActiveBid    BidStatus = "Active"
	WithdrawnBid BidStatus = "Withdrawn"
	AwardedBid   BidStatus = "Awarded"
	RejectedBid  BidStatus = "Rejected"
)

// InvitationStatus is the state of a private-auction invitation.
type InvitationStatus string

const (
	PendingInvitation  InvitationStatus = "Pending"
	AcceptedInvitation InvitationStatus = "Accepted"
	DeclinedInvitation InvitationStatus = "Declined"
)

// AwardMethod selects how the buyer picks a winner.
type AwardMethod string

const (
	LowestBid     AwardMethod = "LowestBid"
	WeightedScore AwardMethod = "WeightedScore"
	ManualAward   AwardMethod = "Manual"
)

func ValidAwardMethod(m AwardMethod) bool {
	switch m {
	case LowestBid, WeightedScore, ManualAward:
		return true
	default:
		return false
	}
}

// EventType is a notification event queued in the outbox.
type EventType string

const (
	InvitedEvent   EventType = "Invited"
	WonEvent       EventType = "Won"
	LostEvent      EventType = "Lost"
	CancelledEvent EventType = "Cancelled"
)

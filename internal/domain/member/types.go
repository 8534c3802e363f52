package member

// Tier is the subscription level of a member.
type Tier string

const (
	TierBasic   Tier = "basic"
	TierPlus    Tier = "plus"
	TierPremium Tier = "premium"
)

func (t Tier) String() string {
	return string(t)
}

func (t Tier) IsValid() bool {
	switch t {
	case TierBasic, TierPlus, TierPremium:
		return true
	default:
		return false
	}
}

// IsPaid reports whether the tier grants premium access.
func (t Tier) IsPaid() bool {
	return t == TierPlus || t == TierPremium
}

func NewTier(s string) (Tier, error) {
	tier := Tier(s)
	if !tier.IsValid() {
		return "", ErrInvalidTier
	}
	return tier, nil
}

package models

// Member is one participant on an event roster.
type Member struct {
	// Name is unique within an event roster and is the join key that
	// expenses use for payer and participants.
	Name string `json:"name" yaml:"name"`

	// PayTo is a free-text payment destination, e.g.
	// "KakaoPay: Kim" or "KB 123-45-67890".
	PayTo string `json:"pay_to" yaml:"pay_to"`
}

// MemberNames returns the names of members in roster order.
func MemberNames(members []Member) []string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	return names
}

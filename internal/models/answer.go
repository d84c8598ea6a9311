package models

// SubmittedAnswer carries the user's answer for one question. The field that
// applies depends on the question type; the rest stay empty.
type SubmittedAnswer struct {
	Selected  *bool             `bson:"selected,omitempty" json:"selected,omitempty"`     // TRUE_FALSE
	OptionID  string            `bson:"option_id,omitempty" json:"option_id,omitempty"`   // MULTIPLE_CHOICE
	OptionIDs []string          `bson:"option_ids,omitempty" json:"option_ids,omitempty"` // MULTIPLE_ANSWER
	Matches   map[string]string `bson:"matches,omitempty" json:"matches,omitempty"`       // MATCHING: left -> right
	Ordering  []string          `bson:"ordering,omitempty" json:"ordering,omitempty"`     // ORDERING: item ids in submitted order
}

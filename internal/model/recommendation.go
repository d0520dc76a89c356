package model

// Recommendation is a generated block of advice kept in a user's history.
// CreatedAt uses the lenient Timestamp because histories written by older
// collaborators carry naive datetimes.
type Recommendation struct {
	ID             string    `json:"_id"`
	UserID         string    `json:"user_id"`
	Recommendation string    `json:"recommendation"`
	CreatedAt      Timestamp `json:"created_at"`
}

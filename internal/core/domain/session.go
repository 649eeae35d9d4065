package domain

// Exchange is one completed question/answer pair within a session.
type Exchange struct {
	// Query is the user's question.
	Query string

	// Answer is the assistant's reply.
	Answer string
}

// Answer is the result of answering a single query.
type Answer struct {
	// SessionID identifies the conversation the query belonged to. When the
	// caller supplied no session id, this carries the freshly created one.
	SessionID string

	// Text is the assistant's reply.
	Text string

	// Sources lists the course material used to produce the reply, in the
	// order it was retrieved, deduplicated.
	Sources []Source
}

package domain

import "time"

// ProposalStatus tracks an agent application through review.
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalApproved ProposalStatus = "approved"
	ProposalRejected ProposalStatus = "rejected"
)

// Proposal is an application from a prospective agent.
type Proposal struct {
	ID               string         `json:"id"`
	FirstName        string         `json:"first_name"`
	LastName         string         `json:"last_name"`
	Email            string         `json:"email"`
	Phone            string         `json:"phone,omitempty"`
	Telegram         string         `json:"telegram,omitempty"`
	WhatsApp         string         `json:"whatsapp,omitempty"`
	PreferredContact string         `json:"preferred_contact,omitempty"`
	Experience       string         `json:"experience,omitempty"`
	Status           ProposalStatus `json:"status"`
	RejectionReason  string         `json:"rejection_reason,omitempty"`
	SubmittedAt      time.Time      `json:"submitted_at"`
	ProcessedAt      *time.Time     `json:"processed_at,omitempty"`
}

// ClaimStatus tracks a support ticket.
type ClaimStatus string

const (
	ClaimOpen     ClaimStatus = "open"
	ClaimAnswered ClaimStatus = "answered"
	ClaimClosed   ClaimStatus = "closed"
)

// Claim is a support ticket filed by an agent.
type Claim struct {
	ID          string      `json:"id"`
	AgentID     string      `json:"agent_id,omitempty"`
	AuthorName  string      `json:"author_name"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	Status      ClaimStatus `json:"status"`
	Response    string      `json:"response,omitempty"`
	SubmittedAt time.Time   `json:"submitted_at"`
	AnsweredAt  *time.Time  `json:"answered_at,omitempty"`
	ClosedAt    *time.Time  `json:"closed_at,omitempty"`
}

// ReviewStats summarizes the admin queue.
type ReviewStats struct {
	PendingProposals  int `json:"pending_proposals"`
	ApprovedProposals int `json:"approved_proposals"`
	RejectedProposals int `json:"rejected_proposals"`
	OpenClaims        int `json:"open_claims"`
	AnsweredClaims    int `json:"answered_claims"`
	ClosedClaims      int `json:"closed_claims"`
}

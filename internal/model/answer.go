package model

import "time"

// AnswerStatus is the review state of a submitted answer
type AnswerStatus string

const (
	AnswerStatusPending  AnswerStatus = "pending"
	AnswerStatusVerified AnswerStatus = "verified"
	AnswerStatusRejected AnswerStatus = "rejected"
)

// VerificationMethod records how an answer was reviewed
type VerificationMethod string

const (
	VerificationManual VerificationMethod = "manual"
	VerificationAuto   VerificationMethod = "auto"
)

// Answer is a user's submission against a question, subject to admin review.
// XPEarned is non-zero only while the answer is verified, and adminComments
// is always empty while it is pending.
type Answer struct {
	ID                 string             `json:"id" bson:"_id,omitempty"`
	QuestionID         string             `json:"questionId" bson:"questionId"`
	AccountID          string             `json:"userId" bson:"userId"`
	Content            string             `json:"content" bson:"content"`
	Images             []string           `json:"images" bson:"images"`
	Status             AnswerStatus       `json:"status" bson:"status"`
	XPEarned           int                `json:"xpEarned" bson:"xpEarned"`
	VerificationMethod VerificationMethod `json:"verificationMethod" bson:"verificationMethod"`
	AdminComments      string             `json:"adminComments" bson:"adminComments"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PendingAnswer is an answer joined with the context an admin needs to
// review it: the question it answers and who submitted it.
type PendingAnswer struct {
	*Answer
	Question *Question `json:"question,omitempty"`
	Username string    `json:"username"`
}

package domain

import "github.com/bwmarrin/snowflake"

// Context names seeded by migration.
const (
	ContextConnectionRequest = "ConnectionRequest"
	ContextCustomer          = "Customer"
	ContextSupportTicket     = "SupportTicket"
)

const (
	LabelNew        = "New"
	LabelApproved   = "Approved"
	LabelDenied     = "Denied"
	LabelCompleted  = "Completed"
	LabelActive     = "Active"
	LabelSuspended  = "Suspended"
	LabelClosed     = "Closed"
	LabelOpen       = "Open"
	LabelInProgress = "In Progress"
)

type StatusContext struct {
	ID   snowflake.ID `gorm:"primaryKey" json:"id"`
	Name string       `gorm:"not null;uniqueIndex" json:"name"`
}

func (StatusContext) TableName() string { return "status_contexts" }

// Status is only meaningful inside its owning context.
type Status struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ContextID   snowflake.ID `gorm:"not null" json:"context_id"`
	Label       string       `gorm:"not null" json:"label"`
	ContextName string       `gorm:"->;column:context_name" json:"context"`
}

func (Status) TableName() string { return "statuses" }

func (s Status) Is(contextName, label string) bool {
	return s.ContextName == contextName && s.Label == label
}

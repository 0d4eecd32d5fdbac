/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"time"

	"k8s.io/klog/v2"

	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

// Migration models. These exist only to drive AutoMigrate; runtime access
// goes through the sqlx structs in types.go. Ownership chains carry
// OnDelete:CASCADE so deleting a user drops everything reachable from them.

type userModel struct {
	Id             string `gorm:"type:uuid;primaryKey"`
	Email          *string
	Username       *string
	IsGuest        bool `gorm:"not null;default:false"`
	GuestExpiresAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (userModel) TableName() string { return TUser }

type guestSessionModel struct {
	Id        string    `gorm:"type:uuid;primaryKey"`
	UserId    string    `gorm:"type:uuid;index"`
	User      userModel `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	Token     string    `gorm:"uniqueIndex"`
	ExpiresAt *time.Time
	CreatedAt time.Time
}

func (guestSessionModel) TableName() string { return TGuestSession }

type workflowModel struct {
	Id              string    `gorm:"type:uuid;primaryKey"`
	UserId          string    `gorm:"type:uuid;index"`
	User            userModel `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	Name            string    `gorm:"not null"`
	Description     *string
	Status          string `gorm:"not null;default:DRAFT;index"`
	Definition      *string
	Cron            *string
	CreditsCost     *int64
	ActiveVersionId *string `gorm:"type:uuid"`
	LastRunId       *string `gorm:"type:uuid"`
	LastRunStatus   *string
	LastRunAt       *time.Time
	NextRunAt       *time.Time `gorm:"index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (workflowModel) TableName() string { return TWorkflow }

type workflowVersionModel struct {
	Id              string        `gorm:"type:uuid;primaryKey"`
	WorkflowId      string        `gorm:"type:uuid;index;uniqueIndex:uk_workflow_version_number"`
	Workflow        workflowModel `gorm:"foreignKey:WorkflowId;constraint:OnDelete:CASCADE"`
	VersionNumber   int           `gorm:"not null;uniqueIndex:uk_workflow_version_number"`
	Definition      string        `gorm:"not null"`
	ExecutionPlan   string        `gorm:"not null"`
	IsActive        bool          `gorm:"not null;default:false"`
	ParentVersionId *string       `gorm:"type:uuid"`
	CreatedBy       *string
	CreatedAt       time.Time
}

func (workflowVersionModel) TableName() string { return TWorkflowVersion }

type workflowExecutionModel struct {
	Id              string        `gorm:"type:uuid;primaryKey"`
	WorkflowId      string        `gorm:"type:uuid;index"`
	Workflow        workflowModel `gorm:"foreignKey:WorkflowId;constraint:OnDelete:CASCADE"`
	UserId          string        `gorm:"type:uuid;index"`
	Trigger         string        `gorm:"not null"`
	Status          string        `gorm:"not null;index"`
	CreatedAt       time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
	CreditsConsumed *int64
}

func (workflowExecutionModel) TableName() string { return TWorkflowExecution }

type executionPhaseModel struct {
	Id                  string                 `gorm:"type:uuid;primaryKey"`
	WorkflowExecutionId string                 `gorm:"type:uuid;index"`
	WorkflowExecution   workflowExecutionModel `gorm:"foreignKey:WorkflowExecutionId;constraint:OnDelete:CASCADE"`
	UserId              string                 `gorm:"type:uuid;index"`
	Number              int                    `gorm:"not null"`
	Name                string                 `gorm:"not null"`
	Status              string                 `gorm:"not null"`
	StartedAt           *time.Time
	CompletedAt         *time.Time
	Node                *string
	Inputs              *string
	Outputs             *string
	CreditsConsumed     *int64
}

func (executionPhaseModel) TableName() string { return TExecutionPhase }

type executionLogModel struct {
	Id               string              `gorm:"type:uuid;primaryKey"`
	ExecutionPhaseId string              `gorm:"type:uuid;index"`
	ExecutionPhase   executionPhaseModel `gorm:"foreignKey:ExecutionPhaseId;constraint:OnDelete:CASCADE"`
	LogLevel         string              `gorm:"not null"`
	Message          string
	Timestamp        time.Time `gorm:"index"`
}

func (executionLogModel) TableName() string { return TExecutionLog }

type userBalanceModel struct {
	UserId    string    `gorm:"type:uuid;primaryKey"`
	User      userModel `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	Credits   int       `gorm:"not null;default:0;check:credits >= 0"`
	UpdatedAt time.Time
}

func (userBalanceModel) TableName() string { return TUserBalance }

type userPurchaseModel struct {
	Id          string    `gorm:"type:uuid;primaryKey"`
	UserId      string    `gorm:"type:uuid;index"`
	User        userModel `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	StripeId    *string
	Description *string
	Amount      int    `gorm:"not null"`
	Currency    string `gorm:"not null;default:usd"`
	CreatedAt   time.Time
}

func (userPurchaseModel) TableName() string { return TUserPurchase }

type credentialModel struct {
	Id         string    `gorm:"type:uuid;primaryKey"`
	UserId     string    `gorm:"type:uuid;index;uniqueIndex:uk_credential_user_name"`
	User       userModel `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	Name       string    `gorm:"not null;uniqueIndex:uk_credential_user_name"`
	SecretRef  string    `gorm:"not null"`
	IsDbSecret bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time
}

func (credentialModel) TableName() string { return TCredential }

type dbSecretModel struct {
	Id             string `gorm:"primaryKey"`
	EncryptedValue string `gorm:"not null"`
	CreatedAt      time.Time
}

func (dbSecretModel) TableName() string { return TDbSecret }

// Migrate creates or updates the schema for every table.
func (c *Client) Migrate() error {
	if c == nil || c.gorm == nil {
		return flowerrors.NewInternalError("The client of db has not been initialized")
	}
	err := c.gorm.AutoMigrate(
		&userModel{},
		&guestSessionModel{},
		&workflowModel{},
		&workflowVersionModel{},
		&workflowExecutionModel{},
		&executionPhaseModel{},
		&executionLogModel{},
		&userBalanceModel{},
		&userPurchaseModel{},
		&credentialModel{},
		&dbSecretModel{},
	)
	if err != nil {
		klog.ErrorS(err, "failed to migrate schema")
		return err
	}
	klog.Infof("schema migration completed")
	return nil
}

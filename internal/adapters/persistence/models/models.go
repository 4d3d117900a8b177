package models

import (
	"fmt"
	"strings"
	"time"

	"sogecredit/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ============================================================
// Users & Auth
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	FirstName string         `gorm:"size:100" json:"first_name"`
	LastName  string         `gorm:"size:100" json:"last_name"`
	Role      domain.Role    `gorm:"size:20;default:'secretary'" json:"role"`
	Branch    string         `gorm:"size:100" json:"branch"`
	Phone     string         `gorm:"size:20" json:"phone"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time     `json:"last_login"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// FullName returns "FirstName LastName", falling back to the username
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// ToActor converts the user row to the domain actor context
func (u *User) ToActor() domain.Actor {
	return domain.Actor{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName(),
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}

// UserResponse DTO
type UserResponse struct {
	ID        uint        `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      domain.Role `json:"role"`
	Branch    string      `json:"branch"`
	Phone     string      `json:"phone"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		Branch:    u.Branch,
		Phone:     u.Phone,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Credit applications
// ============================================================

// Dossier types
const (
	DossierPreApproved = "pre_approuve"
	DossierCrossSell   = "vente_croisee"
	DossierCampaign    = "campagne"
)

// MinGeneratedAmount is the minimum accepted generated amount, in HTG
const MinGeneratedAmount = 1000

// MinClientAgeDays is the minimum client age expressed in days (10 years)
const MinClientAgeDays = 365 * 10

// NewApplicationID generates a stable application identifier ("APP" + 12 hex)
func NewApplicationID() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "APP" + strings.ToUpper(raw[:12])
}

// CreditApplication represents credit_applications table.
// Column names keep the original dossier wire format so the reporting
// queries built on this data keep working.
type CreditApplication struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ApplicationID string `gorm:"column:application_id;size:32;uniqueIndex;not null" json:"application_id"`

	// Group
	GroupLastName  string `gorm:"column:nom_off_groupe;size:100;not null" json:"nom_off_groupe"`
	GroupFirstName string `gorm:"column:prenom_off_groupe;size:100;not null" json:"prenom_off_groupe"`

	// Branch
	Branch      string `gorm:"column:succursale;size:50;not null" json:"succursale"`
	BranchNo    string `gorm:"column:no_succursale;size:20" json:"no_succursale"`
	OtherBranch string `gorm:"column:autre_succursale;size:100" json:"autre_succursale"`

	// Client
	ClientLastName  string    `gorm:"column:nom_client;size:100;not null" json:"nom_client"`
	ClientFirstName string    `gorm:"column:prenom_client;size:100;not null" json:"prenom_client"`
	BirthDate       time.Time `gorm:"column:date_naissance;type:date;not null" json:"date_naissance"`
	CIN             string    `gorm:"column:cin;size:50;not null" json:"cin"`
	ClientAddress   string    `gorm:"column:adresse_client;type:text" json:"adresse_client"`
	ClientPhone     string    `gorm:"column:telephone_client;size:20" json:"telephone_client"`
	ClientEmail     string    `gorm:"column:email_client;size:100" json:"email_client"`

	// Dossier
	DossierType   string     `gorm:"column:type_dossier;size:20;not null" json:"type_dossier"`
	CampaignType  string     `gorm:"column:type_campagne;size:100" json:"type_campagne"`
	CampaignStart *time.Time `gorm:"column:date_debut_campagne;type:date" json:"date_debut_campagne"`
	CampaignEnd   *time.Time `gorm:"column:date_fin_campagne;type:date" json:"date_fin_campagne"`

	// Requested card
	RequestedCardType string `gorm:"column:type_carte_application;size:20;not null" json:"type_carte_application"`

	// Assignment
	OfficerCreditID *uint `gorm:"column:officer_credit_id;index" json:"officer_credit_id"`

	// Status & amount
	Status          domain.Status `gorm:"column:statut;size:20;default:'en_attente'" json:"statut"`
	GeneratedAmount float64       `gorm:"column:montant_genere;type:decimal(15,2);default:0" json:"montant_genere"`

	// Entry metadata
	CreatedByID uint      `gorm:"column:created_by_id;not null" json:"created_by_id"`
	CreatedAt   time.Time `gorm:"column:date_saisie;autoCreateTime" json:"date_saisie"`
	Comment     string    `gorm:"column:commentaire;type:text" json:"commentaire"`

	// Decision (filled by the officer)
	FinalCardType       string     `gorm:"column:type_carte_final;size:20" json:"type_carte_final"`
	RejectionReason     string     `gorm:"column:raison;size:30" json:"raison"`
	ApprovedCreditLimit *float64   `gorm:"column:limite_credit_approuve;type:decimal(15,2)" json:"limite_credit_approuve"`
	DecisionDate        *time.Time `gorm:"column:date_decision;type:date" json:"date_decision"`
	ProcessingComment   string     `gorm:"column:commentaire_traitement;type:text" json:"commentaire_traitement"`

	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	OfficerCredit *User `gorm:"foreignKey:OfficerCreditID" json:"officer_credit,omitempty"`
	CreatedBy     *User `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

func (CreditApplication) TableName() string {
	return "credit_applications"
}

// ClientFullName returns "NOM PRENOM" for display strings
func (a *CreditApplication) ClientFullName() string {
	return strings.TrimSpace(a.ClientLastName + " " + a.ClientFirstName)
}

// Normalize upper-cases the free-text identity fields. Email stays lower case.
func (a *CreditApplication) Normalize() {
	a.GroupLastName = strings.ToUpper(a.GroupLastName)
	a.GroupFirstName = strings.ToUpper(a.GroupFirstName)
	a.ClientLastName = strings.ToUpper(a.ClientLastName)
	a.ClientFirstName = strings.ToUpper(a.ClientFirstName)
	a.CIN = strings.ToUpper(a.CIN)
	a.ClientAddress = strings.ToUpper(a.ClientAddress)
	a.ClientPhone = strings.ToUpper(a.ClientPhone)
	a.ClientEmail = strings.ToLower(a.ClientEmail)
}

// Validate enforces the dossier invariants: minimum client age, minimum
// generated amount, decision date not in the future.
func (a *CreditApplication) Validate() error {
	now := time.Now()

	if !a.BirthDate.IsZero() {
		minBirth := now.AddDate(0, 0, -MinClientAgeDays)
		if a.BirthDate.After(minBirth) {
			return fmt.Errorf("%w: le client doit avoir au moins 10 ans", domain.ErrValidation)
		}
	}

	if a.GeneratedAmount != 0 && a.GeneratedAmount < MinGeneratedAmount {
		return fmt.Errorf("%w: le montant doit etre d'au moins 1,000 HTG", domain.ErrValidation)
	}

	if a.DecisionDate != nil && a.DecisionDate.After(now) {
		return fmt.Errorf("%w: la date de decision ne peut pas etre dans le futur", domain.ErrValidation)
	}

	if a.Status != "" && !a.Status.Valid() {
		return fmt.Errorf("%w: statut invalide", domain.ErrValidation)
	}

	return nil
}

// ApplicationResponse DTO
type ApplicationResponse struct {
	ID                  uint          `json:"id"`
	ApplicationID       string        `json:"application_id"`
	GroupLastName       string        `json:"nom_off_groupe"`
	GroupFirstName      string        `json:"prenom_off_groupe"`
	Branch              string        `json:"succursale"`
	BranchNo            string        `json:"no_succursale"`
	OtherBranch         string        `json:"autre_succursale"`
	ClientLastName      string        `json:"nom_client"`
	ClientFirstName     string        `json:"prenom_client"`
	BirthDate           time.Time     `json:"date_naissance"`
	CIN                 string        `json:"cin"`
	ClientAddress       string        `json:"adresse_client"`
	ClientPhone         string        `json:"telephone_client"`
	ClientEmail         string        `json:"email_client"`
	DossierType         string        `json:"type_dossier"`
	CampaignType        string        `json:"type_campagne"`
	CampaignStart       *time.Time    `json:"date_debut_campagne"`
	CampaignEnd         *time.Time    `json:"date_fin_campagne"`
	RequestedCardType   string        `json:"type_carte_application"`
	OfficerCreditID     *uint         `json:"officer_credit_id"`
	OfficerName         string        `json:"officer_name,omitempty"`
	Status              domain.Status `json:"statut"`
	GeneratedAmount     float64       `json:"montant_genere"`
	CreatedByID         uint          `json:"created_by_id"`
	CreatedByName       string        `json:"created_by_name,omitempty"`
	Comment             string        `json:"commentaire"`
	FinalCardType       string        `json:"type_carte_final"`
	RejectionReason     string        `json:"raison"`
	ApprovedCreditLimit *float64      `json:"limite_credit_approuve"`
	DecisionDate        *time.Time    `json:"date_decision"`
	ProcessingComment   string        `json:"commentaire_traitement"`
	CreatedAt           time.Time     `json:"date_saisie"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

func (a *CreditApplication) ToResponse() *ApplicationResponse {
	resp := &ApplicationResponse{
		ID:                  a.ID,
		ApplicationID:       a.ApplicationID,
		GroupLastName:       a.GroupLastName,
		GroupFirstName:      a.GroupFirstName,
		Branch:              a.Branch,
		BranchNo:            a.BranchNo,
		OtherBranch:         a.OtherBranch,
		ClientLastName:      a.ClientLastName,
		ClientFirstName:     a.ClientFirstName,
		BirthDate:           a.BirthDate,
		CIN:                 a.CIN,
		ClientAddress:       a.ClientAddress,
		ClientPhone:         a.ClientPhone,
		ClientEmail:         a.ClientEmail,
		DossierType:         a.DossierType,
		CampaignType:        a.CampaignType,
		CampaignStart:       a.CampaignStart,
		CampaignEnd:         a.CampaignEnd,
		RequestedCardType:   a.RequestedCardType,
		OfficerCreditID:     a.OfficerCreditID,
		Status:              a.Status,
		GeneratedAmount:     a.GeneratedAmount,
		CreatedByID:         a.CreatedByID,
		Comment:             a.Comment,
		FinalCardType:       a.FinalCardType,
		RejectionReason:     a.RejectionReason,
		ApprovedCreditLimit: a.ApprovedCreditLimit,
		DecisionDate:        a.DecisionDate,
		ProcessingComment:   a.ProcessingComment,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}

	if a.OfficerCredit != nil {
		resp.OfficerName = a.OfficerCredit.FullName()
	}
	if a.CreatedBy != nil {
		resp.CreatedByName = a.CreatedBy.FullName()
	}

	return resp
}

// ============================================================
// History, notifications, audit
// ============================================================

// History action labels
const (
	HistoryActionCreate   = "Création du dossier"
	HistoryActionUpdate   = "Modification du dossier"
	HistoryActionAssign   = "Assignation d'officier"
	HistoryActionReassign = "Réaffectation d'officier"
)

// ApplicationHistory is the append-only per-dossier business trail.
// Rows are never updated or deleted.
type ApplicationHistory struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ApplicationID uint      `gorm:"column:application_ref_id;not null;index" json:"application_ref_id"`
	UserID        uint      `gorm:"not null" json:"user_id"`
	Action        string    `gorm:"size:100;not null" json:"action"`
	Details       string    `gorm:"type:text" json:"details"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"timestamp"`

	// Relations
	Application *CreditApplication `gorm:"foreignKey:ApplicationID" json:"-"`
	User        *User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ApplicationHistory) TableName() string {
	return "application_histories"
}

// HistoryResponse DTO
type HistoryResponse struct {
	ID        uint      `json:"id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	UserName  string    `json:"user_name"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *ApplicationHistory) ToResponse() *HistoryResponse {
	resp := &HistoryResponse{
		ID:        h.ID,
		Action:    h.Action,
		Details:   h.Details,
		Timestamp: h.CreatedAt,
	}
	if h.User != nil {
		resp.UserName = h.User.FullName()
	}
	return resp
}

// Notification is a directed in-app message to one user
type Notification struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Title         string    `gorm:"size:200;not null" json:"title"`
	Message       string    `gorm:"type:text" json:"message"`
	IsRead        bool      `gorm:"default:false" json:"is_read"`
	ApplicationID *uint     `gorm:"column:application_ref_id" json:"application_ref_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	User        *User              `gorm:"foreignKey:UserID" json:"-"`
	Application *CreditApplication `gorm:"foreignKey:ApplicationID" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}

// Audit actions
const (
	AuditActionLogin      = "login"
	AuditActionLogout     = "logout"
	AuditActionCreateApp  = "create_application"
	AuditActionUpdateApp  = "update_application"
	AuditActionAssignApp  = "assign_officer"
	AuditActionDeleteApp  = "delete_application"
	AuditActionCreateUser = "create_user"
	AuditActionUpdateUser = "update_user"
)

// Audit statuses
const (
	AuditStatusSuccess = "success"
	AuditStatusFailed  = "failed"
)

// AuditLog is the process-wide security trail. UserID is nullable so failed
// logins can be recorded too.
type AuditLog struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          *uint     `gorm:"index" json:"user_id"`
	Action          string    `gorm:"size:50;not null;index" json:"action"`
	ResourceType    string    `gorm:"size:50" json:"resource_type"`
	ResourceID      string    `gorm:"size:50" json:"resource_id"`
	ResourceDisplay string    `gorm:"size:200" json:"resource_display"`
	IPAddress       string    `gorm:"size:50" json:"ip_address"`
	UserAgent       string    `gorm:"size:500" json:"user_agent"`
	Changes         string    `gorm:"type:text" json:"changes"`
	Status          string    `gorm:"size:10;default:'success'" json:"status"`
	ErrorMessage    string    `gorm:"size:500" json:"error_message"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"timestamp"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&CreditApplication{},
		&ApplicationHistory{},
		&Notification{},
		&AuditLog{},
	)
}

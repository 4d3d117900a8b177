package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sogecredit/internal/core/domain"
)

func validApplication() *CreditApplication {
	return &CreditApplication{
		ApplicationID:     NewApplicationID(),
		GroupLastName:     "DUPONT",
		GroupFirstName:    "JEAN",
		Branch:            "Delmas",
		ClientLastName:    "JOSEPH",
		ClientFirstName:   "MARIE",
		BirthDate:         time.Now().AddDate(-30, 0, 0),
		CIN:               "CIN-001",
		DossierType:       DossierPreApproved,
		RequestedCardType: "classic",
		Status:            domain.StatusPending,
		GeneratedAmount:   25000,
		CreatedByID:       1,
	}
}

func TestNewApplicationID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewApplicationID()
		assert.True(t, strings.HasPrefix(id, "APP"))
		assert.Len(t, id, 15)
		assert.Equal(t, strings.ToUpper(id), id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestNormalize(t *testing.T) {
	app := validApplication()
	app.ClientLastName = "joseph"
	app.ClientFirstName = "Marie"
	app.CIN = "cin-001"
	app.ClientEmail = "Marie.Joseph@Example.HT"

	app.Normalize()

	assert.Equal(t, "JOSEPH", app.ClientLastName)
	assert.Equal(t, "MARIE", app.ClientFirstName)
	assert.Equal(t, "CIN-001", app.CIN)
	assert.Equal(t, "marie.joseph@example.ht", app.ClientEmail)
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validApplication().Validate())
	})

	t.Run("client too young", func(t *testing.T) {
		app := validApplication()
		app.BirthDate = time.Now().AddDate(-9, 0, 0)
		assert.ErrorIs(t, app.Validate(), domain.ErrValidation)
	})

	t.Run("amount below minimum", func(t *testing.T) {
		app := validApplication()
		app.GeneratedAmount = 999
		assert.ErrorIs(t, app.Validate(), domain.ErrValidation)
	})

	t.Run("zero amount accepted", func(t *testing.T) {
		app := validApplication()
		app.GeneratedAmount = 0
		assert.NoError(t, app.Validate())
	})

	t.Run("decision date in the future", func(t *testing.T) {
		app := validApplication()
		future := time.Now().AddDate(0, 0, 1)
		app.DecisionDate = &future
		assert.ErrorIs(t, app.Validate(), domain.ErrValidation)
	})

	t.Run("unknown status", func(t *testing.T) {
		app := validApplication()
		app.Status = domain.Status("annule")
		assert.ErrorIs(t, app.Validate(), domain.ErrValidation)
	})
}

func TestUserFullName(t *testing.T) {
	user := &User{Username: "jdoe", FirstName: "Jean", LastName: "DOE"}
	assert.Equal(t, "Jean DOE", user.FullName())

	blank := &User{Username: "jdoe"}
	assert.Equal(t, "jdoe", blank.FullName())
}

func TestToResponseNames(t *testing.T) {
	app := validApplication()
	app.OfficerCredit = &User{Username: "officer1", FirstName: "Paul", LastName: "LOUIS"}
	app.CreatedBy = &User{Username: "secretary", FirstName: "Sophie", LastName: "JEAN"}

	resp := app.ToResponse()
	assert.Equal(t, "Paul LOUIS", resp.OfficerName)
	assert.Equal(t, "Sophie JEAN", resp.CreatedByName)
}

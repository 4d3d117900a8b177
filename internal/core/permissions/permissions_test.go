package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sogecredit/internal/adapters/persistence/models"
	"sogecredit/internal/core/domain"
)

func manager() domain.Actor {
	return domain.Actor{ID: 1, Username: "manager", Role: domain.RoleManager, IsActive: true}
}

func officer(id uint) domain.Actor {
	return domain.Actor{ID: id, Username: "officer", Role: domain.RoleOfficer, IsActive: true}
}

func secretary(id uint) domain.Actor {
	return domain.Actor{ID: id, Username: "secretary", Role: domain.RoleSecretary, IsActive: true}
}

func pendingApp(createdBy uint, officerID *uint) *models.CreditApplication {
	return &models.CreditApplication{
		ID:              10,
		ApplicationID:   "APP000000000001",
		Status:          domain.StatusPending,
		CreatedByID:     createdBy,
		OfficerCreditID: officerID,
	}
}

func TestCanCreate(t *testing.T) {
	e := NewEvaluator()

	assert.NoError(t, e.CanCreate(secretary(2)))
	assert.NoError(t, e.CanCreate(manager()))
	assert.ErrorIs(t, e.CanCreate(officer(3)), domain.ErrPermissionDenied)
}

func TestCanCreate_InactiveOrUnknownRole(t *testing.T) {
	e := NewEvaluator()

	inactive := secretary(2)
	inactive.IsActive = false
	assert.ErrorIs(t, e.CanCreate(inactive), domain.ErrPermissionDenied)

	unknown := domain.Actor{ID: 5, Role: domain.Role("intern"), IsActive: true}
	assert.ErrorIs(t, e.CanCreate(unknown), domain.ErrPermissionDenied)
}

func TestCanUpdate_Officer(t *testing.T) {
	e := NewEvaluator()
	officerID := uint(3)

	t.Run("assigned officer may change decision fields", func(t *testing.T) {
		app := pendingApp(2, &officerID)
		change := Change{Fields: []string{FieldStatus, FieldApprovedLimit, FieldProcessingComment}}
		assert.NoError(t, e.CanUpdate(officer(3), app, change))
	})

	t.Run("unassigned dossier denies every officer", func(t *testing.T) {
		app := pendingApp(2, nil)
		change := Change{Fields: []string{FieldStatus}}
		assert.ErrorIs(t, e.CanUpdate(officer(3), app, change), domain.ErrPermissionDenied)
	})

	t.Run("other officer's dossier is denied", func(t *testing.T) {
		app := pendingApp(2, &officerID)
		change := Change{Fields: []string{FieldStatus}}
		assert.ErrorIs(t, e.CanUpdate(officer(4), app, change), domain.ErrPermissionDenied)
	})

	t.Run("assigned officer may change group and campaign data", func(t *testing.T) {
		app := pendingApp(2, &officerID)
		change := Change{Fields: []string{FieldGroupLastName, FieldComment, FieldCampaignStart, FieldBranchNo}}
		assert.NoError(t, e.CanUpdate(officer(3), app, change))
	})

	t.Run("protected client field is denied", func(t *testing.T) {
		app := pendingApp(2, &officerID)
		for _, field := range []string{FieldClientLastName, FieldCIN, FieldGeneratedAmount, FieldBranch, FieldDossierType, FieldRequestedCardType} {
			change := Change{Fields: []string{FieldStatus, field}}
			assert.ErrorIs(t, e.CanUpdate(officer(3), app, change), domain.ErrPermissionDenied, field)
		}
	})
}

func TestCanUpdate_Secretary(t *testing.T) {
	e := NewEvaluator()

	app := pendingApp(2, nil)
	change := Change{Fields: []string{FieldComment}}
	assert.ErrorIs(t, e.CanUpdate(secretary(2), app, change), domain.ErrPermissionDenied)
}

func TestCanUpdate_Manager(t *testing.T) {
	e := NewEvaluator()

	app := pendingApp(2, nil)
	change := Change{Fields: []string{FieldClientLastName, FieldStatus, FieldGeneratedAmount}}
	assert.NoError(t, e.CanUpdate(manager(), app, change))
}

func TestCanUpdate_ReEvaluation(t *testing.T) {
	e := NewEvaluator()
	officerID := uint(3)

	app := pendingApp(2, &officerID)
	app.Status = domain.StatusApproved

	t.Run("officer may move a decided dossier to a valid status", func(t *testing.T) {
		status := domain.StatusPending
		change := Change{Fields: []string{FieldStatus}, NewStatus: &status}
		assert.NoError(t, e.CanUpdate(officer(3), app, change))
	})

	t.Run("invalid re-evaluation status is a conflict", func(t *testing.T) {
		status := domain.Status("annule")
		change := Change{Fields: []string{FieldStatus}, NewStatus: &status}
		assert.ErrorIs(t, e.CanUpdate(officer(3), app, change), domain.ErrConflict)
	})

	t.Run("secretary stays denied after decision", func(t *testing.T) {
		status := domain.StatusPending
		change := Change{Fields: []string{FieldStatus}, NewStatus: &status}
		assert.ErrorIs(t, e.CanUpdate(secretary(2), app, change), domain.ErrPermissionDenied)
	})
}

func TestCanAssign(t *testing.T) {
	e := NewEvaluator()
	officerID := uint(3)

	t.Run("secretary assigns own dossier on first assignment", func(t *testing.T) {
		assert.NoError(t, e.CanAssign(secretary(2), pendingApp(2, nil)))
	})

	t.Run("secretary cannot assign someone else's dossier", func(t *testing.T) {
		assert.ErrorIs(t, e.CanAssign(secretary(2), pendingApp(7, nil)), domain.ErrPermissionDenied)
	})

	t.Run("secretary cannot reassign", func(t *testing.T) {
		assert.ErrorIs(t, e.CanAssign(secretary(2), pendingApp(2, &officerID)), domain.ErrPermissionDenied)
	})

	t.Run("officer never assigns", func(t *testing.T) {
		assert.ErrorIs(t, e.CanAssign(officer(3), pendingApp(2, nil)), domain.ErrPermissionDenied)
	})

	t.Run("manager assigns and reassigns", func(t *testing.T) {
		assert.NoError(t, e.CanAssign(manager(), pendingApp(2, nil)))
		assert.NoError(t, e.CanAssign(manager(), pendingApp(2, &officerID)))
	})
}

func TestCanDelete(t *testing.T) {
	e := NewEvaluator()

	assert.NoError(t, e.CanDelete(manager()))
	assert.ErrorIs(t, e.CanDelete(officer(3)), domain.ErrPermissionDenied)
	assert.ErrorIs(t, e.CanDelete(secretary(2)), domain.ErrPermissionDenied)
}

func TestTrackedFields(t *testing.T) {
	base := TrackedFields(domain.RoleOfficer)
	require.Equal(t, []string{
		FieldStatus,
		FieldOfficerCredit,
		FieldApprovedLimit,
		FieldProcessingComment,
		FieldFinalCardType,
		FieldRejectionReason,
	}, base)

	extended := TrackedFields(domain.RoleManager)
	require.Equal(t, base, extended[:len(base)])
	assert.Contains(t, extended, FieldClientLastName)
	assert.Contains(t, extended, FieldComment)
	assert.NotContains(t, base, FieldClientLastName)
}

func TestFieldWriters(t *testing.T) {
	for _, field := range decisionFields {
		assert.True(t, canWriteField(domain.RoleOfficer, field), field)
		assert.True(t, canWriteField(domain.RoleManager, field), field)
		assert.False(t, canWriteField(domain.RoleSecretary, field), field)
	}
	for _, field := range dossierFields {
		assert.True(t, canWriteField(domain.RoleOfficer, field), field)
		assert.True(t, canWriteField(domain.RoleManager, field), field)
		assert.False(t, canWriteField(domain.RoleSecretary, field), field)
	}
	for _, field := range protectedFields {
		assert.False(t, canWriteField(domain.RoleOfficer, field), field)
		assert.True(t, canWriteField(domain.RoleManager, field), field)
	}
}

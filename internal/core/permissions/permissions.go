// Package permissions decides who may do what to a credit application.
// Each role carries its own policy; the evaluator dispatches to the policy of
// the acting role and applies the cross-cutting re-evaluation rule. Every
// denial is returned as a domain.ErrPermissionDenied (or domain.ErrConflict
// for invalid re-evaluation input) with a human-readable reason, and is
// decided strictly before any mutation takes place.
package permissions

import (
	"fmt"

	"sogecredit/internal/adapters/persistence/models"
	"sogecredit/internal/core/domain"
)

// Change describes a requested update to an application
type Change struct {
	// Fields holds the wire names of the fields present in the change set
	Fields []string
	// NewStatus is the proposed status when the change set carries one
	NewStatus *domain.Status
}

// policy is the per-role capability set. The policies map below covers the
// whole closed role set; an unknown role denies everything.
type policy interface {
	canCreate() error
	canUpdate(app *models.CreditApplication, actor domain.Actor, change Change) error
	canAssign(app *models.CreditApplication, actor domain.Actor) error
	canDelete() error
}

var policies = map[domain.Role]policy{
	domain.RoleManager:   managerPolicy{},
	domain.RoleOfficer:   officerPolicy{},
	domain.RoleSecretary: secretaryPolicy{},
}

// Evaluator authorizes application mutations against the current entity state
// and the acting user.
type Evaluator struct{}

// NewEvaluator creates a permission evaluator
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

func policyFor(actor domain.Actor) (policy, error) {
	if !actor.IsActive {
		return nil, fmt.Errorf("%w: compte desactive", domain.ErrPermissionDenied)
	}
	p, ok := policies[actor.Role]
	if !ok {
		return nil, fmt.Errorf("%w: role inconnu '%s'", domain.ErrPermissionDenied, actor.Role)
	}
	return p, nil
}

// CanCreate reports whether the actor may create an application
func (e *Evaluator) CanCreate(actor domain.Actor) error {
	p, err := policyFor(actor)
	if err != nil {
		return err
	}
	return p.canCreate()
}

// CanUpdate reports whether the actor may apply the change to the application
func (e *Evaluator) CanUpdate(actor domain.Actor, app *models.CreditApplication, change Change) error {
	p, err := policyFor(actor)
	if err != nil {
		return err
	}
	if err := p.canUpdate(app, actor, change); err != nil {
		return err
	}

	// Re-evaluation: once a dossier is decided, a further update may only
	// carry one of the three known statuses.
	if app.Status.Decided() && change.NewStatus != nil && !change.NewStatus.Valid() {
		return fmt.Errorf("%w: statut invalide pour la reevaluation, utilisez 'approuve', 'rejete' ou 'en_attente'", domain.ErrConflict)
	}
	return nil
}

// CanAssign reports whether the actor may assign an officer to the
// application. Reassignment (an officer is already set) is manager-only.
func (e *Evaluator) CanAssign(actor domain.Actor, app *models.CreditApplication) error {
	p, err := policyFor(actor)
	if err != nil {
		return err
	}
	return p.canAssign(app, actor)
}

// CanDelete reports whether the actor may destroy an application
func (e *Evaluator) CanDelete(actor domain.Actor) error {
	p, err := policyFor(actor)
	if err != nil {
		return err
	}
	return p.canDelete()
}

// ============================================================
// Manager: every action, every field
// ============================================================

type managerPolicy struct{}

func (managerPolicy) canCreate() error { return nil }

func (managerPolicy) canUpdate(_ *models.CreditApplication, _ domain.Actor, _ Change) error {
	return nil
}

func (managerPolicy) canAssign(_ *models.CreditApplication, _ domain.Actor) error { return nil }

func (managerPolicy) canDelete() error { return nil }

// ============================================================
// Officer: decides only their own assigned dossiers
// ============================================================

type officerPolicy struct{}

func (officerPolicy) canCreate() error {
	return fmt.Errorf("%w: les officiers ne peuvent pas creer de dossiers", domain.ErrPermissionDenied)
}

func (officerPolicy) canUpdate(app *models.CreditApplication, actor domain.Actor, change Change) error {
	// A dossier with no assigned officer is not modifiable by any officer
	if app.OfficerCreditID == nil {
		return fmt.Errorf("%w: ce dossier n'a pas d'officier assigne", domain.ErrPermissionDenied)
	}
	if *app.OfficerCreditID != actor.ID {
		return fmt.Errorf("%w: ce dossier est assigne a un autre officier", domain.ErrPermissionDenied)
	}
	for _, field := range change.Fields {
		if !canWriteField(domain.RoleOfficer, field) {
			return fmt.Errorf("%w: les officiers ne peuvent pas modifier le champ '%s'", domain.ErrPermissionDenied, field)
		}
	}
	return nil
}

func (officerPolicy) canAssign(_ *models.CreditApplication, _ domain.Actor) error {
	return fmt.Errorf("%w: les officiers ne peuvent pas assigner de dossiers", domain.ErrPermissionDenied)
}

func (officerPolicy) canDelete() error {
	return fmt.Errorf("%w: seul un responsable peut supprimer un dossier", domain.ErrPermissionDenied)
}

// ============================================================
// Secretary: data entry only
// ============================================================

type secretaryPolicy struct{}

func (secretaryPolicy) canCreate() error { return nil }

func (secretaryPolicy) canUpdate(_ *models.CreditApplication, _ domain.Actor, _ Change) error {
	return fmt.Errorf("%w: les secretaires ne peuvent pas modifier les dossiers", domain.ErrPermissionDenied)
}

func (secretaryPolicy) canAssign(app *models.CreditApplication, actor domain.Actor) error {
	if app.CreatedByID != actor.ID {
		return fmt.Errorf("%w: vous ne pouvez assigner que vos propres dossiers", domain.ErrPermissionDenied)
	}
	if app.OfficerCreditID != nil {
		return fmt.Errorf("%w: seul un responsable peut reaffecter un dossier", domain.ErrPermissionDenied)
	}
	return nil
}

func (secretaryPolicy) canDelete() error {
	return fmt.Errorf("%w: seul un responsable peut supprimer un dossier", domain.ErrPermissionDenied)
}

package permissions

import "sogecredit/internal/core/domain"

// Wire names of the dossier fields, as used in change sets, history diffs and
// the field grant table.
const (
	FieldGroupLastName      = "nom_off_groupe"
	FieldGroupFirstName     = "prenom_off_groupe"
	FieldBranch             = "succursale"
	FieldBranchNo           = "no_succursale"
	FieldOtherBranch        = "autre_succursale"
	FieldClientLastName     = "nom_client"
	FieldClientFirstName    = "prenom_client"
	FieldBirthDate          = "date_naissance"
	FieldCIN                = "cin"
	FieldClientAddress      = "adresse_client"
	FieldClientPhone        = "telephone_client"
	FieldClientEmail        = "email_client"
	FieldDossierType        = "type_dossier"
	FieldCampaignType       = "type_campagne"
	FieldCampaignStart      = "date_debut_campagne"
	FieldCampaignEnd        = "date_fin_campagne"
	FieldRequestedCardType  = "type_carte_application"
	FieldOfficerCredit      = "officer_credit"
	FieldStatus             = "statut"
	FieldGeneratedAmount    = "montant_genere"
	FieldCreatedBy          = "created_by"
	FieldComment            = "commentaire"
	FieldFinalCardType      = "type_carte_final"
	FieldRejectionReason    = "raison"
	FieldApprovedLimit      = "limite_credit_approuve"
	FieldDecisionDate       = "date_decision"
	FieldProcessingComment  = "commentaire_traitement"
)

// decisionFields are writable by officers and managers alike
var decisionFields = []string{
	FieldStatus,
	FieldApprovedLimit,
	FieldProcessingComment,
	FieldFinalCardType,
	FieldRejectionReason,
	FieldDecisionDate,
}

// dossierFields carry group, campaign and annotation data; officers may keep
// them current on their assigned dossiers
var dossierFields = []string{
	FieldGroupLastName,
	FieldGroupFirstName,
	FieldBranchNo,
	FieldOtherBranch,
	FieldCampaignType,
	FieldCampaignStart,
	FieldCampaignEnd,
	FieldComment,
}

// protectedFields cover the client identity and dossier classification; only a
// manager may touch them after creation
var protectedFields = []string{
	FieldClientLastName,
	FieldClientFirstName,
	FieldCIN,
	FieldClientPhone,
	FieldClientEmail,
	FieldClientAddress,
	FieldBirthDate,
	FieldGeneratedAmount,
	FieldBranch,
	FieldDossierType,
	FieldRequestedCardType,
	FieldCreatedBy,
}

// fieldWriters is the declarative field capability table: wire field name to
// the set of roles allowed to write it on update. It is consulted by the one
// generic evaluator instead of per-role conditional blocks.
var fieldWriters = map[string][]domain.Role{}

func init() {
	for _, f := range decisionFields {
		fieldWriters[f] = []domain.Role{domain.RoleOfficer, domain.RoleManager}
	}
	for _, f := range dossierFields {
		fieldWriters[f] = []domain.Role{domain.RoleOfficer, domain.RoleManager}
	}
	for _, f := range protectedFields {
		fieldWriters[f] = []domain.Role{domain.RoleManager}
	}
}

// canWriteField reports whether a role may write the given field
func canWriteField(role domain.Role, field string) bool {
	for _, r := range fieldWriters[field] {
		if r == role {
			return true
		}
	}
	return false
}

// trackedFields is the fixed history-diff allow-list shared by every role,
// in render order.
var trackedFields = []string{
	FieldStatus,
	FieldOfficerCredit,
	FieldApprovedLimit,
	FieldProcessingComment,
	FieldFinalCardType,
	FieldRejectionReason,
}

// managerTrackedFields extends the diff allow-list with the client and
// classification fields when the actor is a manager, in render order.
var managerTrackedFields = []string{
	FieldClientLastName,
	FieldClientFirstName,
	FieldCIN,
	FieldClientPhone,
	FieldClientEmail,
	FieldClientAddress,
	FieldBirthDate,
	FieldGeneratedAmount,
	FieldBranch,
	FieldBranchNo,
	FieldOtherBranch,
	FieldDossierType,
	FieldCampaignType,
	FieldCampaignStart,
	FieldCampaignEnd,
	FieldRequestedCardType,
	FieldComment,
}

// TrackedFields returns the ordered list of fields whose changes are recorded
// in the application history for the given actor role.
func TrackedFields(role domain.Role) []string {
	fields := make([]string, 0, len(trackedFields)+len(managerTrackedFields))
	fields = append(fields, trackedFields...)
	if role == domain.RoleManager {
		fields = append(fields, managerTrackedFields...)
	}
	return fields
}

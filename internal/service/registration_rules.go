package service

import (
	"strings"

	"github.com/voteguard/voteguard-api/internal/dto"
	"github.com/voteguard/voteguard-api/internal/models"
)

// RegistrationRequirements is the security-tier table: what each role must
// supply before the signup endpoint accepts the aggregated wizard payload.
type RegistrationRequirements struct {
	Role               string
	Steps              int
	MinSecurityAnswers int
	RequireIDDocument  bool
	RequireBiometric   bool
}

var registrationTiers = map[string]RegistrationRequirements{
	models.RoleVoter: {
		Role:               models.RoleVoter,
		Steps:              4,
		MinSecurityAnswers: 2,
	},
	models.RoleAdmin: {
		Role:               models.RoleAdmin,
		Steps:              5,
		MinSecurityAnswers: 3,
		RequireIDDocument:  true,
	},
	models.RoleSuperAdmin: {
		Role:               models.RoleSuperAdmin,
		Steps:              5,
		MinSecurityAnswers: 3,
		RequireIDDocument:  true,
		RequireBiometric:   true,
	},
}

// RequirementsForRole returns the security-tier requirements for a role,
// falling back to the voter tier for unknown input.
func RequirementsForRole(role string) RegistrationRequirements {
	if tier, ok := registrationTiers[strings.ToLower(strings.TrimSpace(role))]; ok {
		return tier
	}
	return registrationTiers[models.RoleVoter]
}

// missingRegistrationFields re-checks the wizard payload against the tier
// table and returns the names of fields that block signup.
func missingRegistrationFields(req dto.RegisterRequest) []string {
	tier := RequirementsForRole(req.Role)

	var missing []string

	answers := 0
	for _, answer := range req.SecurityAnswers {
		if strings.TrimSpace(answer) != "" {
			answers++
		}
	}
	if answers < tier.MinSecurityAnswers {
		missing = append(missing, "security_answers")
	}

	if tier.RequireIDDocument && strings.TrimSpace(req.IDDocumentNumber) == "" {
		missing = append(missing, "id_document_number")
	}

	if tier.RequireBiometric && !req.BiometricConsent {
		missing = append(missing, "biometric_consent")
	}

	return missing
}

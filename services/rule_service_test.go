package services

import (
	"encoding/json"
	"testing"

	"league-management-system/models"

	"github.com/stretchr/testify/assert"
)

func TestValidateRuleConfig(t *testing.T) {
	tests := []struct {
		name     string
		ruleType string
		config   string
		wantErr  string
	}{
		{
			name:     "age range with both bounds",
			ruleType: models.RuleAgeRange,
			config:   `{"min_age":18,"max_age":35,"age_calculation_date":"2026-01-01"}`,
		},
		{
			name:     "age range with only minimum",
			ruleType: models.RuleAgeRange,
			config:   `{"min_age":16,"age_calculation_date":"2026-01-01"}`,
		},
		{
			name:     "age range missing calculation date",
			ruleType: models.RuleAgeRange,
			config:   `{"min_age":18}`,
			wantErr:  "age_calculation_date",
		},
		{
			name:     "age range with bad date format",
			ruleType: models.RuleAgeRange,
			config:   `{"min_age":18,"age_calculation_date":"01/01/2026"}`,
			wantErr:  "2006-01-02",
		},
		{
			name:     "age range without any bound",
			ruleType: models.RuleAgeRange,
			config:   `{"age_calculation_date":"2026-01-01"}`,
			wantErr:  "min_age or max_age",
		},
		{
			name:     "age range with negative minimum",
			ruleType: models.RuleAgeRange,
			config:   `{"min_age":-1,"age_calculation_date":"2026-01-01"}`,
			wantErr:  "non-negative",
		},
		{
			name:     "age range with inverted bounds",
			ruleType: models.RuleAgeRange,
			config:   `{"min_age":30,"max_age":20,"age_calculation_date":"2026-01-01"}`,
			wantErr:  "must not exceed",
		},
		{
			name:     "geographic county scope",
			ruleType: models.RuleGeographic,
			config:   `{"scope":"COUNTY","allowed_ids":["c-047"]}`,
		},
		{
			name:     "geographic with bad scope",
			ruleType: models.RuleGeographic,
			config:   `{"scope":"REGION","allowed_ids":["r-1"]}`,
			wantErr:  "scope must be one of",
		},
		{
			name:     "geographic with empty allowed set",
			ruleType: models.RuleGeographic,
			config:   `{"scope":"WARD","allowed_ids":[]}`,
			wantErr:  "allowed_ids",
		},
		{
			name:     "player status",
			ruleType: models.RulePlayerStatus,
			config:   `{"allowed_statuses":["ACTIVE"]}`,
		},
		{
			name:     "player status with empty set",
			ruleType: models.RulePlayerStatus,
			config:   `{"allowed_statuses":[]}`,
			wantErr:  "allowed_statuses",
		},
		{
			name:     "document requirement",
			ruleType: models.RuleDocumentRequirement,
			config:   `{"required_documents":["MEDICAL_CERTIFICATE","BIRTH_CERTIFICATE"]}`,
		},
		{
			name:     "document requirement with unknown type",
			ruleType: models.RuleDocumentRequirement,
			config:   `{"required_documents":["DRIVING_LICENSE"]}`,
			wantErr:  "unknown document type",
		},
		{
			name:     "consent requirement",
			ruleType: models.RuleConsentRequirement,
			config:   `{"required_consents":["MEDIA_RELEASE"]}`,
		},
		{
			name:     "consent requirement with unknown type",
			ruleType: models.RuleConsentRequirement,
			config:   `{"required_consents":["MARKETING"]}`,
			wantErr:  "unknown consent type",
		},
		{
			name:     "gender restriction",
			ruleType: models.RuleGenderRestriction,
			config:   `{"allowed_genders":["FEMALE"]}`,
		},
		{
			name:     "gender restriction with empty set",
			ruleType: models.RuleGenderRestriction,
			config:   `{"allowed_genders":[]}`,
			wantErr:  "allowed_genders",
		},
		{
			name:     "medical requirement",
			ruleType: models.RuleMedicalRequirement,
			config:   `{"require_valid_medical":true,"max_medical_age_days":180}`,
		},
		{
			name:     "medical requirement with non-positive freshness",
			ruleType: models.RuleMedicalRequirement,
			config:   `{"require_valid_medical":true,"max_medical_age_days":0}`,
			wantErr:  "max_medical_age_days",
		},
		{
			name:     "unknown rule type",
			ruleType: "RESIDENCY_DURATION",
			config:   `{"min_months":6}`,
			wantErr:  "rule type",
		},
		{
			name:     "empty config",
			ruleType: models.RuleAgeRange,
			config:   ``,
			wantErr:  "config is required",
		},
		{
			name:     "malformed JSON",
			ruleType: models.RuleGeographic,
			config:   `{"scope":`,
			wantErr:  "invalid GEOGRAPHIC config",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRuleConfig(tc.ruleType, json.RawMessage(tc.config))
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tc.wantErr)
			}
		})
	}
}

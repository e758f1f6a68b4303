package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultCatalog(t *testing.T) {
	catalog, err := NewDefaultCatalog()
	require.NoError(t, err)
	assert.Equal(t, MustDefaultCatalog().ServiceTypes(), catalog.ServiceTypes())
}

func TestDefaultCatalog_Sequences(t *testing.T) {
	catalog := MustDefaultCatalog()
	require.Len(t, catalog.ServiceTypes(), 9)

	for _, st := range catalog.ServiceTypes() {
		t.Run(string(st), func(t *testing.T) {
			seq := catalog.Stages(st)

			assert.GreaterOrEqual(t, seq.Len(), 2)
			assert.Equal(t, StagePaymentReceived, seq.First())
			assert.Equal(t, StageComplete, seq.Last())

			seen := map[Stage]bool{}
			for _, stage := range seq {
				assert.False(t, seen[stage], "duplicate stage %s", stage)
				seen[stage] = true
			}
		})
	}
}

func TestCatalog_DefaultTimelineDays(t *testing.T) {
	catalog := MustDefaultCatalog()

	t.Run("drafting defaults to 45 days", func(t *testing.T) {
		days := catalog.DefaultTimelineDays(ServicePatentDrafting)
		require.NotNil(t, days)
		assert.Equal(t, 45, *days)
	})

	t.Run("international filing has no default", func(t *testing.T) {
		assert.Nil(t, catalog.DefaultTimelineDays(ServiceInternationalFiling))
	})

	t.Run("unknown service has no default", func(t *testing.T) {
		assert.Nil(t, catalog.DefaultTimelineDays("trademark"))
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		days := catalog.DefaultTimelineDays(ServiceConsultation)
		*days = 999
		assert.Equal(t, 7, *catalog.DefaultTimelineDays(ServiceConsultation))
	})
}

func TestCatalog_Lookup(t *testing.T) {
	catalog := MustDefaultCatalog()

	t.Run("known service", func(t *testing.T) {
		def, ok := catalog.Lookup(ServiceFTO)
		assert.True(t, ok)
		assert.Equal(t, "Freedom to Operate", def.Label)
	})

	t.Run("unknown service falls back to the shortest sequence", func(t *testing.T) {
		def, ok := catalog.Lookup("trademark")
		assert.False(t, ok)
		assert.Equal(t, ServiceConsultation, def.Type)
		assert.Equal(t, catalog.Stages(ServiceConsultation), catalog.Stages("trademark"))
	})

	t.Run("mutating a returned sequence does not leak", func(t *testing.T) {
		seq := catalog.Stages(ServiceFiling)
		seq[1] = "tampered"
		assert.Equal(t, Stage("document_review"), catalog.Stages(ServiceFiling)[1])
	})
}

func TestCatalog_ParseServiceType(t *testing.T) {
	catalog := MustDefaultCatalog()

	st, err := catalog.ParseServiceType(" Patent_Drafting ")
	require.NoError(t, err)
	assert.Equal(t, ServicePatentDrafting, st)

	_, err = catalog.ParseServiceType("trademark")
	assert.ErrorIs(t, err, ErrUnknownServiceType)
	assert.True(t, IsValidation(err))
}

func TestCatalog_Labels(t *testing.T) {
	catalog := MustDefaultCatalog()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"mapped stage", catalog.StageLabel("office_action_review"), "Reviewing Office Action"},
		{"unmapped stage", catalog.StageLabel("waiting_on_inventor"), "Waiting On Inventor"},
		{"mapped service", catalog.ServiceLabel(ServiceIPValuation), "IP Valuation"},
		{"unmapped service", catalog.ServiceLabel("design_patent"), "Design Patent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestNewCatalog_Validation(t *testing.T) {
	valid := StageSequence{StagePaymentReceived, "work", StageComplete}

	tests := []struct {
		name string
		defs []ServiceDefinition
	}{
		{"empty catalog", nil},
		{"too short", []ServiceDefinition{{Type: "a", Stages: StageSequence{StageComplete}}}},
		{"wrong first stage", []ServiceDefinition{{Type: "a", Stages: StageSequence{"intake", StageComplete}}}},
		{"wrong last stage", []ServiceDefinition{{Type: "a", Stages: StageSequence{StagePaymentReceived, "done"}}}},
		{"duplicate stage", []ServiceDefinition{{Type: "a", Stages: StageSequence{StagePaymentReceived, "work", "work", StageComplete}}}},
		{"duplicate type", []ServiceDefinition{{Type: "a", Stages: valid}, {Type: "a", Stages: valid}}},
		{"negative default", []ServiceDefinition{{Type: "a", Stages: valid, DefaultTimelineDays: days(-1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.defs, nil)
			assert.Error(t, err)
		})
	}
}

func TestHumanizeIdentifier(t *testing.T) {
	assert.Equal(t, "Payment Received", HumanizeIdentifier("payment_received"))
	assert.Equal(t, "Fto", HumanizeIdentifier("fto"))
	assert.Equal(t, "", HumanizeIdentifier(""))
	assert.Equal(t, "A B", HumanizeIdentifier("a__b"))
}

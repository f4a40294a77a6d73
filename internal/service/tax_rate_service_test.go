package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"facturo/internal/domain"
	"facturo/internal/service"
)

func TestTaxRateService_Create(t *testing.T) {
	tests := []struct {
		name    string
		rate    string
		wantErr string
	}{
		{name: "general", rate: "21"},
		{name: "exempt", rate: "0"},
		{name: "two decimals", rate: "5.25"},
		{name: "negative", rate: "-1", wantErr: "must be between 0 and 100"},
		{name: "above hundred", rate: "100.01", wantErr: "must be between 0 and 100"},
		{name: "three decimals", rate: "7.125", wantErr: "at most two decimal places"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			svc := service.NewTaxRateService(f.taxRates, f.audit)
			if tt.wantErr == "" {
				f.taxRates.On("Create", mock.Anything, mock.AnythingOfType("*domain.TaxRate")).Return(nil)
			}

			rate, err := svc.Create(context.Background(), f.tenant, f.actorID, service.CreateTaxRateInput{
				Name:        "IVA",
				RatePercent: decimal.RequireFromString(tt.rate),
			})

			if tt.wantErr != "" {
				var verr *domain.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "rate_percent", verr.Field)
				assert.Equal(t, tt.wantErr, verr.Message)
				f.taxRates.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.True(t, rate.IsActive)
			assert.True(t, rate.RatePercent.Equal(decimal.RequireFromString(tt.rate)))
		})
	}
}

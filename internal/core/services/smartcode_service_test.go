package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/herafoundry/hera_data_engine/internal/apperrors"
	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	portssvc "github.com/herafoundry/hera_data_engine/internal/core/ports/services"
	"github.com/herafoundry/hera_data_engine/internal/core/services"
)

type SmartCodeServiceTestSuite struct {
	suite.Suite
	mockRepo *MockSmartCodeRepository
	service  portssvc.SmartCodeSvcFacade
}

func (suite *SmartCodeServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockSmartCodeRepository)
	suite.service = services.NewSmartCodeService(suite.mockRepo)
}

func (suite *SmartCodeServiceTestSuite) loadRegistry(entries []domain.SmartCodeEntry) {
	suite.mockRepo.On("ListSmartCodeEntries", mock.Anything).Return(entries, nil).Once()
	suite.Require().NoError(suite.service.Reload(context.Background()))
}

func (suite *SmartCodeServiceTestSuite) TestBehavior_UnregisteredFamilyIsZero() {
	suite.loadRegistry(nil)

	behavior, err := suite.service.Behavior(context.Background(), "HERA.MFG.WIDGET.TXN.BUILD.v1")
	suite.Require().NoError(err)
	suite.False(behavior.LedgerTyped)
	suite.Empty(behavior.RequiredFields)
}

func (suite *SmartCodeServiceTestSuite) TestBehavior_MalformedCodeFails() {
	suite.loadRegistry(nil)

	_, err := suite.service.Behavior(context.Background(), "not-a-code")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *SmartCodeServiceTestSuite) TestBehavior_LongerPrefixOverrides() {
	suite.loadRegistry([]domain.SmartCodeEntry{
		{Prefix: "HERA.FIN", Metadata: json.RawMessage(`{"ledger_typed": true, "doc_type": "generic"}`)},
		{Prefix: "HERA.FIN.GL", Metadata: json.RawMessage(`{"doc_type": "journal_entry", "required_fields": ["gl_account"]}`)},
	})

	behavior, err := suite.service.Behavior(context.Background(), "HERA.FIN.GL.TXN.JE.v1")
	suite.Require().NoError(err)
	// ledger typing inherited from the shorter family, doc type overridden by the longer
	suite.True(behavior.LedgerTyped)
	suite.Equal("journal_entry", behavior.DocType)
	suite.Equal([]string{"gl_account"}, behavior.RequiredFields)
}

func (suite *SmartCodeServiceTestSuite) TestBehavior_PrefixMatchesWholeSegmentsOnly() {
	suite.loadRegistry([]domain.SmartCodeEntry{
		{Prefix: "HERA.FIN.GL", Metadata: json.RawMessage(`{"ledger_typed": true}`)},
	})

	// HERA.FIN.GLOBAL must not match the HERA.FIN.GL family
	behavior, err := suite.service.Behavior(context.Background(), "HERA.FIN.GLOBAL.TXN.MISC.v1")
	suite.Require().NoError(err)
	suite.False(behavior.LedgerTyped)
}

func (suite *SmartCodeServiceTestSuite) TestIsExclusiveRelationship() {
	suite.loadRegistry([]domain.SmartCodeEntry{
		{Prefix: "HERA.WORKFLOW.STATUS", Metadata: json.RawMessage(`{"exclusive_rel_types": ["has_status"]}`)},
	})

	suite.True(suite.service.IsExclusiveRelationship(context.Background(), "has_status"))
	suite.False(suite.service.IsExclusiveRelationship(context.Background(), "member_of"))
}

func (suite *SmartCodeServiceTestSuite) TestRegister_RejectsForeignPrefix() {
	err := suite.service.Register(context.Background(), domain.SmartCodeEntry{
		Prefix:   "ACME.FIN.GL",
		Metadata: json.RawMessage(`{}`),
	}, "user-1")
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveSmartCodeEntry", mock.Anything, mock.Anything)
}

func (suite *SmartCodeServiceTestSuite) TestRegister_RejectsMalformedMetadata() {
	err := suite.service.Register(context.Background(), domain.SmartCodeEntry{
		Prefix:   "HERA.FIN.GL",
		Metadata: json.RawMessage(`{broken`),
	}, "user-1")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *SmartCodeServiceTestSuite) TestRegister_SavesAndReloads() {
	entry := domain.SmartCodeEntry{
		Prefix:   "HERA.FIN.AR",
		Metadata: json.RawMessage(`{"ledger_typed": true}`),
	}
	suite.mockRepo.On("SaveSmartCodeEntry", mock.Anything, mock.AnythingOfType("domain.SmartCodeEntry")).Return(nil).Once()
	suite.mockRepo.On("ListSmartCodeEntries", mock.Anything).Return([]domain.SmartCodeEntry{entry}, nil).Once()

	err := suite.service.Register(context.Background(), entry, "user-1")
	suite.Require().NoError(err)

	behavior, err := suite.service.Behavior(context.Background(), "HERA.FIN.AR.TXN.INV.v1")
	suite.Require().NoError(err)
	suite.True(behavior.LedgerTyped)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestSmartCodeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SmartCodeServiceTestSuite))
}

package mapping

import (
	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	"github.com/herafoundry/hera_data_engine/internal/models"
)

// ToModelTransaction converts a domain Transaction header to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:          d.TransactionID,
		OrganizationID:         d.OrganizationID,
		TransactionType:        d.TransactionType,
		TransactionCode:        d.TransactionCode,
		TransactionDate:        d.TransactionDate,
		PostingDate:            d.PostingDate,
		SourceEntityID:         d.SourceEntityID,
		TargetEntityID:         d.TargetEntityID,
		TotalAmount:            d.TotalAmount,
		Status:                 models.TransactionStatus(d.Status),
		SmartCode:              d.SmartCode,
		Metadata:               d.Metadata,
		OriginalTransactionID:  d.OriginalTransactionID,
		ReversingTransactionID: d.ReversingTransactionID,
		AuditFields:            ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction header to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:          m.TransactionID,
		OrganizationID:         m.OrganizationID,
		TransactionType:        m.TransactionType,
		TransactionCode:        m.TransactionCode,
		TransactionDate:        m.TransactionDate,
		PostingDate:            m.PostingDate,
		SourceEntityID:         m.SourceEntityID,
		TargetEntityID:         m.TargetEntityID,
		TotalAmount:            m.TotalAmount,
		Status:                 domain.TransactionStatus(m.Status),
		SmartCode:              m.SmartCode,
		Metadata:               m.Metadata,
		OriginalTransactionID:  m.OriginalTransactionID,
		ReversingTransactionID: m.ReversingTransactionID,
		AuditFields:            ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelTransactionLine converts a domain TransactionLine to a model TransactionLine
func ToModelTransactionLine(d domain.TransactionLine) models.TransactionLine {
	return models.TransactionLine{
		LineID:         d.LineID,
		OrganizationID: d.OrganizationID,
		TransactionID:  d.TransactionID,
		LineNumber:     d.LineNumber,
		LineEntityID:   d.LineEntityID,
		Quantity:       d.Quantity,
		UnitPrice:      d.UnitPrice,
		DebitAmount:    d.DebitAmount,
		CreditAmount:   d.CreditAmount,
		LineAmount:     d.LineAmount,
		SmartCode:      d.SmartCode,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransactionLine converts a model TransactionLine to a domain TransactionLine
func ToDomainTransactionLine(m models.TransactionLine) domain.TransactionLine {
	return domain.TransactionLine{
		LineID:         m.LineID,
		OrganizationID: m.OrganizationID,
		TransactionID:  m.TransactionID,
		LineNumber:     m.LineNumber,
		LineEntityID:   m.LineEntityID,
		Quantity:       m.Quantity,
		UnitPrice:      m.UnitPrice,
		DebitAmount:    m.DebitAmount,
		CreditAmount:   m.CreditAmount,
		LineAmount:     m.LineAmount,
		SmartCode:      m.SmartCode,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionLineSlice converts a slice of model lines.
func ToDomainTransactionLineSlice(ms []models.TransactionLine) []domain.TransactionLine {
	out := make([]domain.TransactionLine, len(ms))
	for i, m := range ms {
		out[i] = ToDomainTransactionLine(m)
	}
	return out
}

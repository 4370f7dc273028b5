package stage_test

import (
	"shipflow/domain/stage"
	"testing"

	. "github.com/onsi/gomega"
)

func TestNewCatalog(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should reject empty stage list", func(t *testing.T) {
		c, err := stage.NewCatalog([]stage.StageDefinition{})
		Expect(c).To(BeNil())
		Expect(err).ToNot(BeNil())
		Expect(err.Error()).To(Equal("catalog must contain at least one stage"))
	})

	t.Run("should reject non contiguous stage ids", func(t *testing.T) {
		c, err := stage.NewCatalog([]stage.StageDefinition{
			{ID: 1, Name: "First"},
			{ID: 3, Name: "Third"},
		})
		Expect(c).To(BeNil())
		Expect(err).ToNot(BeNil())
		Expect(err.Error()).To(Equal("stage ids must be a contiguous sequence starting at 1"))

		c, err = stage.NewCatalog([]stage.StageDefinition{{ID: 2, Name: "Second"}})
		Expect(c).To(BeNil())
		Expect(err).ToNot(BeNil())
	})

	t.Run("should reject unknown document types", func(t *testing.T) {
		c, err := stage.NewCatalog([]stage.StageDefinition{
			{ID: 1, Name: "First", RequiredDocuments: []stage.DocumentType{"some_unknown_type"}},
		})
		Expect(c).To(BeNil())
		Expect(err).ToNot(BeNil())
		Expect(err.Error()).To(Equal("unknown document type: some_unknown_type"))
	})

	t.Run("should accept a valid stage list", func(t *testing.T) {
		c, err := stage.NewCatalog([]stage.StageDefinition{
			{ID: 1, Name: "First", RequiredDocuments: []stage.DocumentType{stage.DocTypeInvoice}},
			{ID: 2, Name: "Second"},
		})
		Expect(err).To(BeNil())
		Expect(c).ToNot(BeNil())
		Expect(len(c.Stages)).To(Equal(2))
	})
}

func TestCatalogStageByID(t *testing.T) {
	RegisterTestingT(t)

	c := stage.ImportExportCatalog

	t.Run("should find stages by id", func(t *testing.T) {
		s, found := c.StageByID(1)
		Expect(found).To(BeTrue())
		Expect(s.Name).To(Equal("Quotation & Approval"))
		Expect(s.Responsible).To(Equal("Sales"))
		Expect(s.RequiredDocuments).To(Equal([]stage.DocumentType{stage.DocTypePriceQuote}))

		s, found = c.StageByID(7)
		Expect(found).To(BeTrue())
		Expect(s.Name).To(Equal("Completion"))
	})

	t.Run("should not find stages out of range", func(t *testing.T) {
		_, found := c.StageByID(0)
		Expect(found).To(BeFalse())
		_, found = c.StageByID(8)
		Expect(found).To(BeFalse())
		_, found = c.StageByID(-1)
		Expect(found).To(BeFalse())
	})
}

func TestCatalogTerminal(t *testing.T) {
	RegisterTestingT(t)

	c := stage.ImportExportCatalog

	t.Run("stage pointer beyond the final stage is terminal", func(t *testing.T) {
		Expect(c.IsTerminal(1)).To(BeFalse())
		Expect(c.IsTerminal(7)).To(BeFalse())
		Expect(c.IsTerminal(8)).To(BeTrue())
	})

	t.Run("final stage is the last of the list", func(t *testing.T) {
		Expect(c.FinalStage().ID).To(Equal(7))
		Expect(c.FinalStage().Name).To(Equal("Completion"))
	})
}

func TestCatalogReviewStage(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should find the review stage of the import export pipeline", func(t *testing.T) {
		s, found := stage.ImportExportCatalog.ReviewStage()
		Expect(found).To(BeTrue())
		Expect(s.ID).To(Equal(6))
		Expect(s.Kind).To(Equal(stage.KindReviewAndConfirm))
		Expect(s.RequiredDocuments).To(BeEmpty())
	})

	t.Run("should report absence of a review stage", func(t *testing.T) {
		c, err := stage.NewCatalog([]stage.StageDefinition{{ID: 1, Name: "Only"}})
		Expect(err).To(BeNil())
		_, found := c.ReviewStage()
		Expect(found).To(BeFalse())
	})
}

func TestImportExportCatalog(t *testing.T) {
	RegisterTestingT(t)

	t.Run("required documents of each stage", func(t *testing.T) {
		c := stage.ImportExportCatalog
		Expect(len(c.Stages)).To(Equal(7))

		wanted := map[int][]stage.DocumentType{
			1: {stage.DocTypePriceQuote},
			2: {stage.DocTypePurchaseOrder},
			3: {stage.DocTypeBillOfLading, stage.DocTypeInvoice},
			4: {stage.DocTypeShippingCertificate, stage.DocTypeCommercialInvoice, stage.DocTypePackingList, stage.DocTypeCertificateOfOrigin},
			5: {stage.DocTypeComplianceCertificate},
			6: nil,
			7: nil,
		}
		for id, docs := range wanted {
			s, found := c.StageByID(id)
			Expect(found).To(BeTrue())
			if docs == nil {
				Expect(s.RequiredDocuments).To(BeEmpty())
			} else {
				Expect(s.RequiredDocuments).To(Equal(docs))
			}
		}
	})
}

func TestIsValidDocumentType(t *testing.T) {
	RegisterTestingT(t)

	t.Run("all declared document types are valid", func(t *testing.T) {
		for _, d := range stage.AllDocumentTypes {
			Expect(stage.IsValidDocumentType(d)).To(BeTrue())
		}
		Expect(len(stage.AllDocumentTypes)).To(Equal(11))
	})

	t.Run("unknown values are invalid", func(t *testing.T) {
		Expect(stage.IsValidDocumentType("")).To(BeFalse())
		Expect(stage.IsValidDocumentType("passport")).To(BeFalse())
		Expect(stage.IsValidDocumentType("Invoice")).To(BeFalse())
	})
}

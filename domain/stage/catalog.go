package stage

import "errors"

type Kind uint

const (
	KindNormal Kind = iota
	KindReviewAndConfirm
)

type StageDefinition struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Responsible string `json:"responsible"`
	Kind        Kind   `json:"kind"`

	RequiredDocuments []DocumentType `json:"requiredDocuments,omitempty"`
}

// stateless object, just used for stage computing
type Catalog struct {
	Stages []StageDefinition `json:"stages"`
}

func NewCatalog(stages []StageDefinition) (*Catalog, error) {
	if len(stages) == 0 {
		return nil, errors.New("catalog must contain at least one stage")
	}
	for idx, s := range stages {
		if s.ID != idx+1 {
			return nil, errors.New("stage ids must be a contiguous sequence starting at 1")
		}
		for _, d := range s.RequiredDocuments {
			if !IsValidDocumentType(d) {
				return nil, errors.New("unknown document type: " + string(d))
			}
		}
	}
	return &Catalog{Stages: stages}, nil
}

func (c *Catalog) StageByID(id int) (StageDefinition, bool) {
	if id < 1 || id > len(c.Stages) {
		return StageDefinition{}, false
	}
	return c.Stages[id-1], true
}

// IsTerminal reports whether a request with the given stage pointer has
// passed the final stage.
func (c *Catalog) IsTerminal(id int) bool {
	return id > len(c.Stages)
}

func (c *Catalog) FinalStage() StageDefinition {
	return c.Stages[len(c.Stages)-1]
}

func (c *Catalog) ReviewStage() (StageDefinition, bool) {
	for _, s := range c.Stages {
		if s.Kind == KindReviewAndConfirm {
			return s, true
		}
	}
	return StageDefinition{}, false
}

// ImportExportCatalog is the pipeline every import/export request passes
// through. The stage list is fixed at build time.
var ImportExportCatalog = Catalog{Stages: []StageDefinition{
	{ID: 1, Name: "Quotation & Approval", Responsible: "Sales", RequiredDocuments: []DocumentType{DocTypePriceQuote}},
	{ID: 2, Name: "Purchase Order", Responsible: "Procurement", RequiredDocuments: []DocumentType{DocTypePurchaseOrder}},
	{ID: 3, Name: "Shipping", Responsible: "Shipping Department", RequiredDocuments: []DocumentType{DocTypeBillOfLading, DocTypeInvoice}},
	{ID: 4, Name: "Customs Clearance", Responsible: "Customs Broker",
		RequiredDocuments: []DocumentType{DocTypeShippingCertificate, DocTypeCommercialInvoice, DocTypePackingList, DocTypeCertificateOfOrigin}},
	{ID: 5, Name: "Receiving & Inspection", Responsible: "Warehouse Manager", RequiredDocuments: []DocumentType{DocTypeComplianceCertificate}},
	{ID: 6, Name: "Follow-up", Responsible: "Operations Manager", Kind: KindReviewAndConfirm},
	{ID: 7, Name: "Completion", Responsible: "Operations Manager"},
}}

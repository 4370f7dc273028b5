package stage

type DocumentType string

const (
	DocTypePriceQuote            DocumentType = "price_quote"
	DocTypePurchaseOrder         DocumentType = "purchase_order"
	DocTypeComplianceCertificate DocumentType = "compliance_certificate"
	DocTypeShippingCertificate   DocumentType = "shipping_certificate"
	DocTypeInvoice               DocumentType = "invoice"
	DocTypeCustomsDocument       DocumentType = "customs_document"
	DocTypeBillOfLading          DocumentType = "bill_of_lading"
	DocTypeCommercialInvoice     DocumentType = "commercial_invoice"
	DocTypePackingList           DocumentType = "packing_list"
	DocTypeCertificateOfOrigin   DocumentType = "certificate_of_origin"
	DocTypeOther                 DocumentType = "other"
)

var AllDocumentTypes = []DocumentType{
	DocTypePriceQuote, DocTypePurchaseOrder, DocTypeComplianceCertificate,
	DocTypeShippingCertificate, DocTypeInvoice, DocTypeCustomsDocument,
	DocTypeBillOfLading, DocTypeCommercialInvoice, DocTypePackingList,
	DocTypeCertificateOfOrigin, DocTypeOther,
}

func IsValidDocumentType(t DocumentType) bool {
	for _, candidate := range AllDocumentTypes {
		if t == candidate {
			return true
		}
	}
	return false
}

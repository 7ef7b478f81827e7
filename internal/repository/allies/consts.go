package allies

const (
	// collection name
	alliesNode string = "allies"

	// Fields' name and path
	NameFieldPath        string = "name"
	TypeFieldPath        string = "type"
	DescriptionFieldPath string = "description"
	ImageFieldPath       string = "image"
	AddressFieldPath     string = "address"
	WhatsappFieldPath    string = "whatsapp"
	BankDetailsFieldPath string = "bankDetails"
	ItemsFieldPath       string = "items"

	// Embedded item fields
	ItemNameField        string = "name"
	ItemPriceField       string = "price"
	ItemDescriptionField string = "description"
	ItemImageField       string = "image"

	// placeholders of a new ally
	placeholderName        string = "Nuevo Aliado"
	placeholderDescription string = "Descripción del establecimiento."
	placeholderAddress     string = "Puerto López, Manabí"

	// placeholders of a new embedded item
	placeholderItemName  string = "Nuevo Item"
	placeholderItemPrice string = "$0.00"
)

var textFields = map[string]bool{
	NameFieldPath:        true,
	DescriptionFieldPath: true,
	AddressFieldPath:     true,
	WhatsappFieldPath:    true,
	BankDetailsFieldPath: true,
}

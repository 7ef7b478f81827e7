package content

const (
	// collection name
	contentNode string = "content"
	// the singleton document
	MainDocId string = "main"

	// Fields' name and path
	HeroTitleFieldPath             string = "heroTitle"
	HeroSubtitleFieldPath          string = "heroSubtitle"
	HeroImageFieldPath             string = "heroImage"
	NormativasPermitidoFieldPath   string = "normativasPermitido"
	NormativasNoPermitidoFieldPath string = "normativasNoPermitido"
	ParqueaderoItemsFieldPath      string = "parqueaderoItems"
	SeguridadItemsFieldPath        string = "seguridadItems"
	AliadosVisibleFieldPath        string = "aliadosVisible"
	TiendaVisibleFieldPath         string = "tiendaVisible"
	EcuadorTravelPromoFieldPath    string = "ecuadorTravelPromo"
	TiendaPromoFieldPath           string = "tiendaPromo"

	// Promo fields, nested under a promo field path
	PromoTitleField       string = "title"
	PromoDescriptionField string = "description"
	PromoImageField       string = "image"
	PromoLinkField        string = "link"
)

var (
	listFields = map[string]bool{
		NormativasPermitidoFieldPath:   true,
		NormativasNoPermitidoFieldPath: true,
		ParqueaderoItemsFieldPath:      true,
		SeguridadItemsFieldPath:        true,
	}

	textFields = map[string]bool{
		HeroTitleFieldPath:    true,
		HeroSubtitleFieldPath: true,
	}

	visibilityFields = map[string]bool{
		AliadosVisibleFieldPath: true,
		TiendaVisibleFieldPath:  true,
	}

	promoFields = map[string]bool{
		EcuadorTravelPromoFieldPath: true,
		TiendaPromoFieldPath:        true,
	}
)

// PromoFieldPath addresses one field of a promo, e.g. "ecuadorTravelPromo.title".
func PromoFieldPath(promo, field string) string {
	return promo + "." + field
}

package model

type Promo struct {
	Title       string `json:"title" firestore:"title"`
	Description string `json:"description" firestore:"description"`
	Image       string `json:"image" firestore:"image" validate:"omitempty,url"`
	Link        string `json:"link" firestore:"link" validate:"omitempty,url"`
}

// SiteContent is the singleton document content/main.
type SiteContent struct {
	Id                    string   `json:"-" firestore:"-"`
	HeroTitle             string   `json:"heroTitle" firestore:"heroTitle"`
	HeroSubtitle          string   `json:"heroSubtitle" firestore:"heroSubtitle"`
	HeroImage             string   `json:"heroImage" firestore:"heroImage"`
	NormativasPermitido   []string `json:"normativasPermitido" firestore:"normativasPermitido"`
	NormativasNoPermitido []string `json:"normativasNoPermitido" firestore:"normativasNoPermitido"`
	ParqueaderoItems      []string `json:"parqueaderoItems" firestore:"parqueaderoItems"`
	SeguridadItems        []string `json:"seguridadItems" firestore:"seguridadItems"`
	AliadosVisible        bool     `json:"aliadosVisible" firestore:"aliadosVisible"`
	TiendaVisible         bool     `json:"tiendaVisible" firestore:"tiendaVisible"`
	EcuadorTravelPromo    Promo    `json:"ecuadorTravelPromo" firestore:"ecuadorTravelPromo"`
	TiendaPromo           Promo    `json:"tiendaPromo" firestore:"tiendaPromo"`
}

// DefaultSiteContent is seeded when content/main does not exist and is shown
// until the first snapshot arrives.
func DefaultSiteContent() SiteContent {
	return SiteContent{
		Id:                    "main",
		HeroTitle:             "Playa Los Frailes",
		HeroSubtitle:          "El secreto mejor guardado del Parque Nacional Machalilla",
		NormativasPermitido:   []string{"Ropa cómoda", "Uso de protector solar biodegradable"},
		NormativasNoPermitido: []string{"Mascotas", "Alcohol", "Fogatas"},
		ParqueaderoItems:      []string{"Área vigilada de 08:00 a 16:00", "Capacidad para 50 vehículos"},
		SeguridadItems:        []string{"Respete las banderas de playa", "No nade solo"},
		AliadosVisible:        true,
		TiendaVisible:         true,
		EcuadorTravelPromo: Promo{
			Title:       "Manabí Travel Social",
			Description: "Únete a nuestra red social turística y comparte tus aventuras en el corazón de Manabí.",
			Link:        "https://socialmanabitravel.vercel.app/",
		},
		TiendaPromo: Promo{
			Title:       "Arte del Mar",
			Description: "Adquiere productos locales y artesanías únicas inspiradas en la belleza de nuestras costas.",
			Link:        "https://arte-del-mar.web.app/",
		},
	}
}

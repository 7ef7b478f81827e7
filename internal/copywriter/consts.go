package copywriter

const (
	IMPROVE_INSTRUCTION string = `Eres un experto en turismo para Playa Los Frailes. Contexto: %s. Responde solo con el texto mejorado.`
	IMPROVE_PROMPT      string = `Mejora este texto: "%s"`

	TRANSLATE_INSTRUCTION string = `Eres un traductor de textos turísticos de Playa Los Frailes y Puerto López, Manabí.
	Traduce el texto al idioma indicado conservando el tono y los nombres propios. Responde solo con la traducción.`
	TRANSLATE_PROMPT string = `Idioma: %s
	Texto: "%s"`

	GUIDE_INSTRUCTION string = `Eres un guía local de Playa Los Frailes, Parque Nacional Machalilla.
	Escribe una guía para visitantes de la actividad indicada.
	Genera una respuesta en formato JSON con las claves 'extendedDescription', 'whatToBring', 'bestTime' y 'safetyTips'.
	Ejemplo:
	{
		"extendedDescription": "texto",
		"whatToBring": ["item", "item"],
		"bestTime": "texto",
		"safetyTips": ["consejo", "consejo"]
	}`
	GUIDE_PROMPT string = `Actividad: %s
	Descripción: %s`

	DIRECTIONS_PROMPT string = `¿Cómo llego a %s ubicado en %s? Dame una descripción breve y el enlace directo de Google Maps.`
)

var languageNames = map[string]string{
	"es": "español",
	"en": "inglés",
}

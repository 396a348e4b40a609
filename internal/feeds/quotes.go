package feeds

import "math/rand"

var motivationalQuotes = []string{
	"El único modo de hacer un gran trabajo es amar lo que haces. - Steve Jobs",
	"El éxito es la suma de pequeños esfuerzos repetidos día tras día. - Robert Collier",
	"No esperes el momento perfecto, toma el momento y hazlo perfecto.",
	"Cada día es una nueva oportunidad para cambiar tu vida.",
	"La disciplina es el puente entre las metas y los logros. - Jim Rohn",
	"El fracaso es simplemente la oportunidad de comenzar de nuevo, esta vez de forma más inteligente. - Henry Ford",
	"Cree en ti mismo y todo será posible.",
	"La mejor manera de predecir el futuro es crearlo. - Peter Drucker",
	"No cuentes los días, haz que los días cuenten. - Muhammad Ali",
	"El éxito no es definitivo, el fracaso no es fatal: lo que cuenta es el coraje para continuar. - Winston Churchill",
	"Tu actitud determina tu dirección.",
	"Los grandes logros requieren tiempo y perseverancia.",
	"Hoy es un buen día para ser increíble.",
	"La única limitación es la que te pones a ti mismo.",
	"Convierte tus heridas en sabiduría. - Oprah Winfrey",
}

// MotivationalQuote picks a random entry from the fixed rotation, already
// wrapped for WhatsApp italics.
func MotivationalQuote() string {
	return "💫 _" + motivationalQuotes[rand.Intn(len(motivationalQuotes))] + "_"
}

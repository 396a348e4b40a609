package conversation

import "strings"

// greetingWords trigger the welcome for a subject's very first message.
var greetingWords = []string{
	"hola", "buenas", "buen dia", "buen día", "buenos dias", "buenos días",
	"hey", "hello", "hi", "que tal", "qué tal",
}

func isGreeting(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range greetingWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// welcomeMessage is shown once, to a new subject whose first message is a
// greeting.
const welcomeMessage = `¡Hola! 👋 Soy tu *Asistente Personal*.

Estoy acá para ayudarte a organizar tu día a día. Esto es lo que puedo hacer:

📋 *TAREAS*
• "agregar tarea: comprar leche"
• "mis tareas"
• "completar tarea 1"

📝 *NOTAS*
• "guardar nota: cumple de mamá 15/3"
• "mis notas"

💰 *GASTOS*
• "gasté 5000 en supermercado"
• "mis gastos"
• "análisis de gastos"

🛒 *LISTA DE COMPRAS*
• "agregar a compras: pan, leche"
• "lista de compras"
• "compré el 1"

⏰ *RECORDATORIOS*
• "recordame en 2 horas sacar la ropa"
• "recordame mañana a las 10 llamar al médico"

💊 *MEDICAMENTOS*
• "tomo ibuprofeno"
• "mis medicamentos"
• "ya tomé mis medicamentos"

👪 *CUIDADO*
• "mi contacto de emergencia es Ana +549..."
• "activá el monitoreo de ánimo"

🌤 *INFO ÚTIL*
• "clima" - pronóstico del tiempo
• "dólar" - cotización actual
• "buen día" - resumen completo del día

¿En qué te puedo ayudar?`

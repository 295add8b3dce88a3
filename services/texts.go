package services

// Тексты виджета на языке приложения.
const (
	TextNoMoreClasses   = "✅ No hay más clases por hoy"
	TextNoSchedule      = "Sin clases configuradas"
	TextNoEventsToday   = "Sin eventos hoy"
	TextNoPendingEvents = "No hay eventos pendientes hoy"
	TextSignIn          = "Por favor, inicia sesión en la app"
	TextScheduleError   = "Error al cargar horario"
	TextEventsError     = "Error al cargar eventos"
	TextNoSubject       = "Sin nombre"
	TextNoRoom          = "Sin aula"
	TextDefaultEvent    = "Evento"
	TextNeverUpdated    = "Sin actualizar"
)

var spanishMonths = [12]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

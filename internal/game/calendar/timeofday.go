package calendar

// TimeOfDay is a coarse bucket of the game day.
type TimeOfDay string

const (
	Morning   TimeOfDay = "Morning"
	Afternoon TimeOfDay = "Afternoon"
	Evening   TimeOfDay = "Evening"
	Night     TimeOfDay = "Night"
)

// Bucket returns the time of day for an hour.
//
// Postcondition: Morning for [5,12), Afternoon for [12,18), Evening for
// [18,22), Night otherwise.
func Bucket(hour int) TimeOfDay {
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 18:
		return Afternoon
	case hour >= 18 && hour < 22:
		return Evening
	default:
		return Night
	}
}

// TimeOfDay returns the bucket for the date's hour.
func (d Date) TimeOfDay() TimeOfDay { return Bucket(d.Hour) }

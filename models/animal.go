package models

// Animal — аватар игрока из справочника животных.
type Animal struct {
	ID      string  `json:"id" db:"id"`
	Name    string  `json:"name" db:"name"`
	Species *string `json:"species,omitempty" db:"species"`
	Emoji   string  `json:"emoji" db:"emoji"`
}

// emojiToAnimal maps the avatar emojis the UI sends to catalog names.
var emojiToAnimal = map[string]string{
	"🦁": "Lion",
	"🐯": "Tiger",
	"🦅": "Eagle",
	"🐱": "Cat",
	"🦈": "Shark",
	"🐶": "Dog",
	"🐋": "Whale",
	"🐴": "Horse",
	"🦬": "Bison",
	"🫎": "Moose",
	"🪿": "Goose",
	"🐢": "Turtle",
	"🦫": "Beaver",
	"🐻": "Bear",
	"🐸": "Frog",
	"🐰": "Rabbit",
	"🐺": "Wolf",
	"👤": "Human",
	"🐵": "Monkey",
	"🦎": "Chameleon",
}

var animalNames = func() map[string]struct{} {
	names := make(map[string]struct{}, len(emojiToAnimal))
	for _, n := range emojiToAnimal {
		names[n] = struct{}{}
	}
	return names
}()

// ResolveAnimalName принимает либо имя животного, либо emoji-аватар и
// возвращает каноническое имя из справочника. Неизвестные значения
// сводятся к "Cat" — так же ведёт себя фронтенд при потере аватара.
func ResolveAnimalName(nameOrEmoji string) string {
	if _, ok := animalNames[nameOrEmoji]; ok {
		return nameOrEmoji
	}
	if name, ok := emojiToAnimal[nameOrEmoji]; ok {
		return name
	}
	return "Cat"
}

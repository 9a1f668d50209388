package config

import "github.com/mmynk/eventsplit/internal/models"

// defaultPayTo is the placeholder payment destination members start with.
const defaultPayTo = "카카오페이: (입력)"

var defaultRosterNames = []string{
	"김명석", "김민우", "김태형", "박영민", "박진주",
	"박천오", "서은희", "유인상", "윤정원", "윤진성",
	"이대환", "이민우", "이선미", "이예리", "이종현",
	"이희준", "정원조", "종완", "진한", "한윤혁",
}

// DefaultRoster returns the member list seeded into new events when no
// roster is configured.
func DefaultRoster() []models.Member {
	roster := make([]models.Member, len(defaultRosterNames))
	for i, name := range defaultRosterNames {
		roster[i] = models.Member{Name: name, PayTo: defaultPayTo}
	}
	return roster
}

package project

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/avaliacao/core/chart"
)

// Source tells where the answers of a question come from.
type Source string

const (
	SourceFree       Source = "livre"
	SourcePredefined Source = "pre-definido"
	SourceEntity     Source = "entidade"
)

type (
	Project struct {
		ID        int64     `json:"id" db:"id"`
		Name      string    `json:"name" db:"name"`
		CreatedAt time.Time `json:"created_at" db:"created_at"`
	}

	// Summary is a project as listed to one of its members.
	Summary struct {
		ID          int64  `json:"id" db:"id"`
		Name        string `json:"name" db:"name"`
		Submissions int    `json:"submissions" db:"submissions"`
	}

	Question struct {
		ID           int64              `json:"id" db:"id"`
		ProjectID    int64              `json:"project_id" db:"project_id"`
		Text         string             `json:"text" db:"text"`
		Type         chart.QuestionType `json:"type" db:"type"`
		Source       Source             `json:"source" db:"source"`
		EntityTypeID *int64             `json:"entity_type_id,omitempty" db:"entity_type_id"`
	}

	// QuestionSummary is a chartable question: one with at least one answer.
	QuestionSummary struct {
		ID      int64              `json:"id" db:"id"`
		Text    string             `json:"text" db:"text"`
		Type    chart.QuestionType `json:"type" db:"type"`
		Answers int                `json:"answers" db:"answers"`
	}

	Overview struct {
		ProjectID   int64             `json:"project_id"`
		Submissions int               `json:"submissions"`
		Questions   []QuestionSummary `json:"questions"`
	}

	Option struct {
		QuestionID int64  `db:"question_id"`
		Value      string `db:"value"`
	}

	// Attribute is one attribute value of an entity, as defined by its entity type.
	Attribute struct {
		TypeID    int64  `db:"entity_type_id"`
		EntitySeq int64  `db:"entity_seq"`
		Seq       int64  `db:"attribute_seq"`
		Label     string `db:"label"`
		Visible   bool   `db:"visible"`
		Value     string `db:"value"`
	}

	// Entity is an instance of a user-defined entity type; its attributes are keyed by label.
	Entity struct {
		TypeID     int64             `json:"entity_type_id"`
		Seq        int64             `json:"seq"`
		Attributes map[string]string `json:"attributes"`
		Display    string            `json:"display"`
	}

	EntityOption struct {
		ID      string `json:"id"`
		Display string `json:"display"`
	}

	// FormQuestion is a question with the choices a submitter may pick from.
	FormQuestion struct {
		ID       int64              `json:"id"`
		Text     string             `json:"text"`
		Type     chart.QuestionType `json:"type"`
		Source   Source             `json:"source"`
		Options  []string           `json:"options,omitempty"`
		Entities []EntityOption     `json:"entities,omitempty"`
	}
)

// EntityID formats the reference submitted as the answer to an entity question.
func EntityID(typeID, seq int64) string {
	return fmt.Sprintf("%d_%d", typeID, seq)
}

var ErrInvalidEntityID = errors.New("invalid entity reference")

// ParseEntityID is the reverse of EntityID.
func ParseEntityID(s string) (typeID, seq int64, err error) {
	parts := strings.Split(strings.TrimSpace(s), "_")
	if len(parts) != 2 {
		return 0, 0, ErrInvalidEntityID
	}
	if typeID, err = strconv.ParseInt(parts[0], 10, 64); err != nil {
		return 0, 0, ErrInvalidEntityID
	}
	if seq, err = strconv.ParseInt(parts[1], 10, 64); err != nil {
		return 0, 0, ErrInvalidEntityID
	}
	return typeID, seq, nil
}

func (e Entity) ID() string {
	return EntityID(e.TypeID, e.Seq)
}

// BuildEntities groups attribute rows (sorted by type, entity then attribute seq) into entities.
// Rows with an empty label stand for entities without attributes.
func BuildEntities(attrs []Attribute) []Entity {
	entities := make([]Entity, 0)
	var shown [][]string
	for _, a := range attrs {
		n := len(entities)
		if n == 0 || entities[n-1].TypeID != a.TypeID || entities[n-1].Seq != a.EntitySeq {
			entities = append(entities, Entity{TypeID: a.TypeID, Seq: a.EntitySeq, Attributes: map[string]string{}})
			shown = append(shown, nil)
			n++
		}
		if a.Label == "" {
			continue
		}
		entities[n-1].Attributes[a.Label] = a.Value
		if a.Visible {
			shown[n-1] = append(shown[n-1], a.Label+": "+a.Value)
		}
	}
	for i := range entities {
		if len(shown[i]) == 0 {
			entities[i].Display = fmt.Sprintf("Entity %d", entities[i].Seq)
		} else {
			entities[i].Display = strings.Join(shown[i], " | ")
		}
	}
	return entities
}

func sortAttributes(attrs []Attribute) {
	sort.SliceStable(attrs, func(i, j int) bool {
		a, b := attrs[i], attrs[j]
		if a.TypeID != b.TypeID {
			return a.TypeID < b.TypeID
		}
		if a.EntitySeq != b.EntitySeq {
			return a.EntitySeq < b.EntitySeq
		}
		return a.Seq < b.Seq
	})
}

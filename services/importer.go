package services

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"agenda-widget/logger"
	"agenda-widget/models"

	"github.com/xuri/excelize/v2"
)

// ImporterService превращает XLSX с колонками "Día | Hora | Materia ID | Materia | Aula"
// в документ расписания.
type ImporterService struct{}

func NewImporterService() *ImporterService {
	return &ImporterService{}
}

type columnMap struct {
	day, time, subjectID, subject, room int
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// ParseXLSX читает первый лист. Заголовок ищется в первых десяти строках.
func (s *ImporterService) ParseXLSX(file io.Reader, userID, scheduleID string) (*models.ScheduleDocument, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open xlsx: %w", ErrInvalidSchedule, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidSchedule)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}

	headerRow, cols, ok := s.findHeader(rows)
	if !ok {
		return nil, fmt.Errorf("%w: header row with Día and Hora columns not found", ErrInvalidSchedule)
	}

	doc := &models.ScheduleDocument{
		ID:       scheduleID,
		UserID:   userID,
		Active:   true,
		Slots:    make([]models.RawSlot, 0),
		Subjects: make(map[string]models.Subject),
	}

	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		day := cell(row, cols.day)
		hour := cell(row, cols.time)
		if day == "" && hour == "" {
			continue
		}

		if _, err := models.ParseWeekday(day); err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrInvalidSchedule, i+1, err)
		}
		if _, _, _, err := models.ParseSlotTime(hour); err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrInvalidSchedule, i+1, err)
		}

		raw := models.RawSlot{Day: day, Time: hour, Room: cell(row, cols.room)}

		name := cell(row, cols.subject)
		id := cell(row, cols.subjectID)
		if id == "" && name != "" {
			id = slug(name)
		}
		if id != "" {
			subjectID := id
			raw.SubjectID = &subjectID
			if _, exists := doc.Subjects[id]; !exists || name != "" {
				doc.Subjects[id] = models.Subject{Name: name, Room: raw.Room}
			}
		}
		doc.Slots = append(doc.Slots, raw)
	}

	if len(doc.Slots) == 0 {
		return nil, fmt.Errorf("%w: no slots found", ErrInvalidSchedule)
	}

	logger.Infof("importer: parsed %d slots and %d subjects for %s", len(doc.Slots), len(doc.Subjects), userID)
	return doc, nil
}

func (s *ImporterService) findHeader(rows [][]string) (int, columnMap, bool) {
	for i := 0; i < len(rows) && i < 10; i++ {
		cols := columnMap{day: -1, time: -1, subjectID: -1, subject: -1, room: -1}
		for j, value := range rows[i] {
			switch normalizeHeader(value) {
			case "dia", "day":
				cols.day = j
			case "hora", "time":
				cols.time = j
			case "materia id", "materiaid", "subject id":
				cols.subjectID = j
			case "materia", "subject":
				cols.subject = j
			case "aula", "room":
				cols.room = j
			}
		}
		if cols.day >= 0 && cols.time >= 0 {
			return i, cols, true
		}
	}
	return 0, columnMap{}, false
}

func normalizeHeader(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.NewReplacer("í", "i", "á", "a", "é", "e", "ó", "o", "ú", "u").Replace(value)
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func slug(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(normalizeHeader(name), "-"), "-")
}

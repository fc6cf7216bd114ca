package service

import (
	"clausecheck/internal/model"
	"time"
)

// ReporterService assembles the final report: filters nothing further (the
// resolver already dropped satisfied requirements), computes summary counts,
// attaches titles, and groups findings by section
type ReporterService struct {
	catalog *model.Catalog
}

// NewReporterService creates a new reporter
func NewReporterService(catalog *model.Catalog) *ReporterService {
	return &ReporterService{catalog: catalog}
}

// BuildReport is a pure function of its inputs (timestamp excepted): running
// it twice on identical resolver output yields identical summary, sections
// and global gaps. Total counts every distinct requirement ever seen across
// the normalized input, so satisfied = total - insufficient - missing.
func (s *ReporterService) BuildReport(contract *model.Contract, normalized *model.NormalizedState, resolution *model.ResolutionState, now time.Time) *model.Report {
	report := &model.Report{
		ContractID:  contract.ID,
		GeneratedAt: now,
		GlobalGaps:  []model.ReportEntry{},
		Sections:    []model.ReportSection{},
	}

	sections := make(map[string]*model.ReportSection)
	sectionOrder := make([]string, 0, len(normalized.Sections))
	for _, rec := range normalized.Sections {
		sectionOrder = append(sectionOrder, rec.SectionID)
	}

	for _, resolved := range resolution.Resolved {
		entry := model.ReportEntry{
			ID:       resolved.RequirementID,
			Title:    s.title(resolved.RequirementID),
			Analysis: resolved.Analysis,
		}

		switch resolved.FinalStatus {
		case model.StatusInsufficient:
			report.Summary.Insufficient++
		case model.StatusMissing:
			report.Summary.Missing++
		}

		if len(resolved.Sections) == 0 {
			report.GlobalGaps = append(report.GlobalGaps, entry)
			continue
		}

		// A finding attributed to several sections appears under each
		for _, sectionID := range resolved.Sections {
			sec, ok := sections[sectionID]
			if !ok {
				sec = &model.ReportSection{
					SectionID:    sectionID,
					Title:        sectionTitle(contract, sectionID),
					Insufficient: []model.ReportEntry{},
					Missing:      []model.ReportEntry{},
				}
				sections[sectionID] = sec
			}
			if resolved.FinalStatus == model.StatusInsufficient {
				sec.Insufficient = append(sec.Insufficient, entry)
			} else {
				sec.Missing = append(sec.Missing, entry)
			}
		}
	}

	// Present sections in submission order; only sections with findings
	for _, sectionID := range sectionOrder {
		if sec, ok := sections[sectionID]; ok {
			report.Sections = append(report.Sections, *sec)
		}
	}

	report.Summary.Total = len(normalized.Seen)
	report.Summary.Satisfied = report.Summary.Total - report.Summary.Insufficient - report.Summary.Missing

	return report
}

func (s *ReporterService) title(requirementID string) string {
	if title, ok := s.catalog.Title(requirementID); ok {
		return title
	}
	return model.TitleUnavailable
}

func sectionTitle(contract *model.Contract, sectionID string) string {
	if title, ok := contract.SectionTitles[sectionID]; ok && title != "" {
		return title
	}
	return model.TitleUnavailable
}

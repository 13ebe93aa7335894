/* importer.go
 * Contains the workbook dispatcher: identifies the organization that produced a workbook, classifies each sheet and
 * hands draw sheets to the knockout or round robin reconstructor. Sheets are processed in workbook order and a failing
 * sheet never aborts the workbook; its failure is reported as a diagnostic instead
 * Authors: Zachary Bower
 */

package importer

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"tournament-importer/api/knockout"
	"tournament-importer/api/normalize"
	"tournament-importer/api/participants"
	"tournament-importer/api/profile"
	"tournament-importer/api/record"
	"tournament-importer/api/roundrobin"
	"tournament-importer/api/shared"
	"tournament-importer/api/sheet"
)

// a gap whose span is this close to the minimum decided the draw's rows by a narrow margin
const gapSpanMargin = 2

// Options configures one parse
type Options struct {
	Registry *profile.Registry
	// SheetFilter limits processing to the sheets whose name contains it (case and accent insensitive)
	SheetFilter string
	// Notifier receives every diagnostic as it is produced, may be nil
	Notifier shared.Notifier
	// Logger defaults to slog.Default()
	Logger *slog.Logger
}

type parser struct {
	workbookType *profile.WorkbookType
	profile      *profile.Profile
	diagnostics  *shared.Diagnostics
	builder      *record.Builder
	logger       *slog.Logger

	hasInfoSheet bool
	drawSheets   []*sheet.Grid
}

// Parse converts a decoded workbook into a tournament record
// Preconditions: Receives a decoded workbook and options with a registry
// Postconditions: Returns the record with the diagnostics raised while building it. Returns a ParseError of kind
// WorkbookUnidentified or MissingProfile, and no record, when the workbook cannot be processed at all
func Parse(wb shared.Workbook, opts Options) (shared.TournamentRecord, []shared.Diagnostic, error) {
	diagnostics := shared.NewDiagnostics(opts.Notifier)
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Registry == nil {
		return shared.TournamentRecord{}, nil, errors.New("importer: no profile registry")
	}

	workbookType, ok := opts.Registry.Identify(wb.SheetNames)
	if !ok {
		err := &shared.ParseError{Kind: shared.KindWorkbookUnidentified,
			Message: fmt.Sprintf("no workbook type matches sheets %q", wb.SheetNames)}
		shared.Report(diagnostics, shared.KindWorkbookUnidentified, shared.SeverityError, "", "", err.Message)
		return shared.TournamentRecord{}, diagnostics.Items(), err
	}
	if workbookType.Profile == nil {
		err := &shared.ParseError{Kind: shared.KindMissingProfile,
			Message: fmt.Sprintf("%s workbooks have no profile", workbookType.Organization)}
		shared.Report(diagnostics, shared.KindMissingProfile, shared.SeverityError, "", "", err.Message)
		return shared.TournamentRecord{}, diagnostics.Items(), err
	}

	p := &parser{
		workbookType: workbookType,
		profile:      workbookType.Profile,
		diagnostics:  diagnostics,
		builder:      record.NewBuilder(),
		logger:       logger.With("organization", workbookType.Organization),
	}
	filter := normalize.Fold(opts.SheetFilter)
	for _, name := range wb.SheetNames {
		selected := filter == "" || strings.Contains(normalize.Fold(name), filter)
		p.sheet(sheet.NewGrid(name, wb.Sheets[name]), selected)
	}
	if !p.hasInfoSheet {
		// workbooks without an information sheet carry the tournament details on their draw sheets
		for _, g := range p.drawSheets {
			p.tournamentInfo(g)
		}
	}

	r := p.builder.Record(p.profile.ProviderID, workbookType.Organization)
	p.logger.Info("workbook parsed", "tournamentId", r.TournamentID, "draws", len(r.Draws),
		"diagnostics", len(diagnostics.Items()))
	return r, diagnostics.Items(), nil
}

// sheet classifies one sheet and processes it according to its type. Every sheet is classified and information
// sheets are always read; selected only decides whether a draw sheet is reconstructed
func (p *parser) sheet(g *sheet.Grid, selected bool) {
	layout, ok := sheet.Classify(g, p.profile)
	if !ok {
		p.report(shared.KindSheetUnclassified, shared.SeverityWarning, g.Name, "no sheet definition matches")
		return
	}

	switch layout.Definition.Type {
	case shared.Information:
		p.hasInfoSheet = true
		p.tournamentInfo(g)
	case shared.Knockout, shared.RoundRobin:
		p.drawSheets = append(p.drawSheets, g)
		if !selected {
			p.logger.Debug("sheet filtered out", "sheet", g.Name)
			return
		}
		if err := p.draw(g, layout); err != nil {
			p.reportError(g.Name, err)
		}
	default:
		p.logger.Debug("sheet skipped", "sheet", g.Name, "type", layout.Definition.Type)
	}
}

func (p *parser) tournamentInfo(g *sheet.Grid) {
	info, err := sheet.ExtractInfo(g, p.profile.TournamentInfo)
	if err != nil {
		p.report(shared.KindSheetUnclassified, shared.SeverityWarning, g.Name,
			fmt.Sprintf("tournament info: %v", err))
	}
	p.builder.SetInfo(info)
}

// draw reconstructs one draw sheet and adds it to the record. A panic inside the reconstructors is returned as an
// error of the sheet
func (p *parser) draw(g *sheet.Grid, layout sheet.Layout) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &shared.ParseError{Kind: shared.KindSheetUnclassified, Sheet: g.Name,
				Message: fmt.Sprintf("reconstruction failed: %v", r)}
		}
	}()

	drawInfo, err := sheet.ExtractInfo(g, p.profile.DrawInfo)
	if err != nil {
		p.report(shared.KindSheetUnclassified, shared.SeverityWarning, g.Name, fmt.Sprintf("draw info: %v", err))
	}
	gender := drawInfo.Values["gender"]

	rows := participants.FindRows(g, p.profile, layout)
	for _, span := range rows.GapSpans {
		if span-p.profile.MinGapSpan() <= gapSpanMargin {
			p.report(shared.KindHeuristicDependent, shared.SeverityInfo, g.Name,
				fmt.Sprintf("draw rows bounded by a gap spanning %d rows", span))
		}
	}
	roster := participants.Extract(g, p.profile, layout, rows, gender)

	drawType := shared.Knockout
	if layout.Definition.Type == shared.RoundRobin || roster.RoundRobin {
		drawType = shared.RoundRobin
	}

	var draw shared.Draw
	switch drawType {
	case shared.RoundRobin:
		draw, err = roundrobin.Reconstruct(roundrobin.Input{Grid: g, Profile: p.profile, Layout: layout,
			Roster: roster, Gender: gender, Notifier: p.diagnostics})
	default:
		draw, err = knockout.Reconstruct(knockout.Input{Grid: g, Profile: p.profile, Layout: layout,
			Roster: roster, Gender: gender, Notifier: p.diagnostics})
	}
	if err != nil {
		return err
	}

	added := p.builder.AddDraw(record.DrawInput{
		SheetName: g.Name,
		Type:      drawType,
		Format:    roster.MatchType(),
		Draw:      draw,
		Info:      drawInfo.Values,
	})
	p.logger.Debug("sheet parsed", "sheet", g.Name, "type", drawType, "matchUps", len(added.MatchUps))
	return nil
}

func (p *parser) report(kind shared.ErrorKind, severity shared.Severity, sheetName, message string) {
	shared.Report(p.diagnostics, kind, severity, sheetName, "", message)
}

// reportError converts a sheet's failure into a diagnostic. Sheets without round data are warnings, every other
// failure drops the draw and is an error
func (p *parser) reportError(sheetName string, err error) {
	var parseErr *shared.ParseError
	if !errors.As(err, &parseErr) {
		p.report(shared.KindSheetUnclassified, shared.SeverityError, sheetName, err.Error())
		return
	}
	severity := shared.SeverityError
	if parseErr.Kind == shared.KindNoRounds {
		severity = shared.SeverityWarning
	}
	message := parseErr.Message
	if message == "" {
		message = parseErr.Kind.Sentinel().Error()
	}
	shared.Report(p.diagnostics, parseErr.Kind, severity, sheetName, parseErr.Cell, message)
	p.logger.Debug("sheet dropped", "sheet", sheetName, "error", err)
}

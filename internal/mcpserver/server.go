// Package mcpserver exposes the loaded aquarium document to LLM clients as
// MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/aquatrack/internal/loader"
	"github.com/starford/aquatrack/internal/models"
	"github.com/starford/aquatrack/internal/photo"
	"github.com/starford/aquatrack/internal/render"
	"github.com/starford/aquatrack/internal/viewer"
)

// ContractURI is the resource holding DocumentFormatContract.
const ContractURI = "aquatrack://document-format"

// Server wraps the MCP server with the document tools.
type Server struct {
	mcp *server.MCPServer
	svc *viewer.Service
}

// New creates an MCP server with every tool registered.
func New(svc *viewer.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"AquaTrack",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_tank",
		mcp.WithDescription("Return the tank details of the current document."),
	), s.getTank)

	s.mcp.AddTool(mcp.NewTool("list_residents",
		mcp.WithDescription("List residents grouped by type, each group sorted by label."),
	), s.listResidents)

	s.mcp.AddTool(mcp.NewTool("list_measurements",
		mcp.WithDescription("List water-quality measurements in document order."),
	), s.listMeasurements)

	s.mcp.AddTool(mcp.NewTool("list_events",
		mcp.WithDescription("List logged events in document order with display labels."),
	), s.listEvents)

	s.mcp.AddTool(mcp.NewTool("list_photos",
		mcp.WithDescription("List photos newest first with resolved image URLs."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of photos (0 for all)")),
	), s.listPhotos)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List the JSON documents in the local document directory."),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("get_document_contract",
		mcp.WithDescription("Return the aquarium document format. Read it before calling load_document."),
	), s.getDocumentContract)

	s.mcp.AddTool(mcp.NewTool("load_document",
		mcp.WithDescription("Load a document, either from JSON text (treated like a dropped file and "+
			"remembered for the next visit) or from a URL or document-directory path."),
		mcp.WithString("content", mcp.Description("Document JSON text")),
		mcp.WithString("name", mcp.Description("File name reported for content (default upload.json)")),
		mcp.WithString("url", mcp.Description("URL or document-directory path to load instead of content")),
	), s.loadDocument)

	s.mcp.AddResource(
		mcp.NewResource(ContractURI, "Document Format",
			mcp.WithResourceDescription("Shape of the aquarium JSON document."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio serves MCP on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) document(ctx context.Context) (*models.Document, loader.Result) {
	res := s.svc.Current(ctx)
	return res.Document, res
}

func (s *Server) getTank(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, _ := s.document(ctx)
	if doc.Tank == nil {
		return mcp.NewToolResultText("no tank details"), nil
	}
	f := s.svc.Renderer().Formatter()
	return jsonResult(map[string]any{
		"name":    doc.Tank.Name,
		"volume":  f.Volume(doc.Tank.VolumeL),
		"volumeL": doc.Tank.VolumeL,
		"started": f.Date(doc.Tank.Start),
		"start":   doc.Tank.Start,
		"notes":   doc.Tank.Notes,
	})
}

type residentGroup struct {
	Type      string            `json:"type"`
	Heading   string            `json:"heading"`
	Residents []models.Resident `json:"residents"`
}

func (s *Server) listResidents(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, _ := s.document(ctx)
	groups := s.svc.Renderer().GroupResidents(doc.Residents)
	out := make([]residentGroup, 0, len(groups))
	for _, g := range groups {
		heading, ok := render.ResidentLabels[g.Key]
		if !ok {
			heading = g.Key
		}
		out = append(out, residentGroup{Type: g.Key, Heading: heading, Residents: g.Entries})
	}
	return jsonResult(out)
}

func (s *Server) listMeasurements(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, _ := s.document(ctx)
	f := s.svc.Renderer().Formatter()
	type row struct {
		When string `json:"when"`
		models.Measurement
	}
	out := make([]row, 0, len(doc.Measurements))
	for _, m := range doc.Measurements {
		out = append(out, row{When: f.DateTime(m.T), Measurement: m})
	}
	return jsonResult(out)
}

func (s *Server) listEvents(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, _ := s.document(ctx)
	f := s.svc.Renderer().Formatter()
	type row struct {
		When  string `json:"when"`
		Label string `json:"label"`
		models.Event
	}
	out := make([]row, 0, len(doc.Events))
	for _, e := range doc.Events {
		out = append(out, row{When: f.DateTime(e.T), Label: render.EventLabel(e.Type), Event: e})
	}
	return jsonResult(out)
}

type photoItem struct {
	Index    int    `json:"index"`
	URL      string `json:"url"`
	Caption  string `json:"caption,omitempty"`
	Taken    string `json:"taken,omitempty"`
	Resident string `json:"resident,omitempty"`
}

func (s *Server) listPhotos(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, res := s.document(ctx)
	f := s.svc.Renderer().Formatter()
	ordered := photo.Order(doc.Photos, f)
	if limit := req.GetInt("limit", 0); limit > 0 {
		ordered = photo.Recent(ordered, limit)
	}
	var resolver photo.Resolver
	out := make([]photoItem, 0, len(ordered))
	for _, e := range ordered {
		item := photoItem{
			Index:    e.Index,
			URL:      resolver.Resolve(e.Photo.URL.Or(""), res.Base, doc.PhotosBase),
			Caption:  e.Photo.Caption.TruthyOr(""),
			Resident: e.Photo.Resident.TruthyOr(""),
		}
		if e.Photo.TakenAt.Truthy {
			item.Taken = f.Date(e.Photo.TakenAt)
		}
		out = append(out, item)
	}
	return jsonResult(out)
}

func (s *Server) listDocuments(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.svc.Documents()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(docs)
}

func (s *Server) getDocumentContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ContractURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}

func (s *Server) loadDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content := req.GetString("content", "")
	locator := req.GetString("url", "")
	switch {
	case content != "" && locator != "":
		return mcp.NewToolResultError("pass either content or url, not both"), nil
	case locator != "":
		res := s.svc.Load(ctx, pageFor(locator))
		if res.Origin != loader.OriginURL {
			return mcp.NewToolResultError(statusText(res.Status)), nil
		}
		return mcp.NewToolResultText(statusText(res.Status)), nil
	case content != "":
		name := req.GetString("name", "upload.json")
		res, err := s.svc.Upload(ctx, loader.File{Name: name, ContentType: "application/json", Body: []byte(content)}, nil)
		if err != nil {
			return mcp.NewToolResultError(statusText(res.Status)), nil
		}
		return mcp.NewToolResultText(statusText(res.Status)), nil
	default:
		return mcp.NewToolResultError("content or url is required"), nil
	}
}

// pageFor builds the page URL that loads locator through the data parameter.
func pageFor(locator string) *url.URL {
	return &url.URL{Path: "/", RawQuery: url.Values{viewer.ParamData: {locator}}.Encode()}
}

func statusText(status []models.Status) string {
	lines := make([]string, 0, len(status))
	for _, st := range status {
		lines = append(lines, fmt.Sprintf("[%s] %s", st.Tone, st.Message))
	}
	return strings.Join(lines, "\n")
}

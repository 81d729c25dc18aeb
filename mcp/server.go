// Package mcp provides the MCP (Model Context Protocol) server for GraphLeague.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/Benny93/graphleague-go/internal/coach"
	"github.com/Benny93/graphleague-go/internal/dispatch"
	"github.com/Benny93/graphleague-go/internal/graph"
	"github.com/Benny93/graphleague-go/internal/intent"
	"github.com/Benny93/graphleague-go/internal/narrate"
	"github.com/Benny93/graphleague-go/internal/storage"
	"github.com/Benny93/graphleague-go/internal/vocab"
)

const protocolVersion = "2024-11-05"

// Server represents the MCP server.
type Server struct {
	svc          *coach.Service
	q            dispatch.Querier
	stats        StatsReader
	counterLimit int
	logger       *zap.Logger

	impl *mcp.Implementation
}

// StatsReader reports the contents of the graph store.
type StatsReader interface {
	Stats(ctx context.Context) (storage.Stats, error)
}

// Options configures the server.
type Options struct {
	CounterLimit int
	Version      string
	Logger       *zap.Logger
}

// Tool represents an MCP tool.
type Tool struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// Resource represents an MCP resource.
type Resource struct {
	URI         string
	Name        string
	Description string
	MimeType    string
}

// NewServer creates a new MCP server. svc answers free-text questions, q
// serves the direct query tools and stats feeds the overview resource.
func NewServer(svc *coach.Service, q dispatch.Querier, stats StatsReader, opts Options) *Server {
	if opts.CounterLimit <= 0 {
		opts.CounterLimit = dispatch.DefaultCounterLimit
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Server{
		svc:          svc,
		q:            q,
		stats:        stats,
		counterLimit: opts.CounterLimit,
		logger:       opts.Logger,
		impl:         &mcp.Implementation{Name: "graphleague", Version: opts.Version},
	}
	return s
}

func laneSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Description: "Optional lane filter (Top, Jungle, Mid, Bot, Support; common synonyms such as adc or jg are accepted)",
	}
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []Tool {
	return []Tool{
		{
			Name:        "graphleague_ask",
			Description: "Answer a free-text League of Legends strategy question (counter picks, mechanics, archetype matchups) from the champion knowledge graph.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"question": {Type: "string", Description: "The question, in plain language"},
				},
				Required: []string{"question"},
			},
		},
		{
			Name:        "graphleague_counter_pick",
			Description: "Rank champions that counter an enemy champion, scored by archetype matchups and exploited mechanic weaknesses.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"champion": {Type: "string", Description: "Enemy champion name"},
					"lane":     laneSchema(),
					"limit":    {Type: "integer", Description: "Maximum number of picks"},
				},
				Required: []string{"champion"},
			},
		},
		{
			Name:        "graphleague_mechanic_search",
			Description: "List champions that have a game mechanic, with the ability that provides it.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"mechanic": {Type: "string", Description: "Mechanic name or synonym, e.g. Projectile Block or windwall"},
					"lane":     laneSchema(),
				},
				Required: []string{"mechanic"},
			},
		},
		{
			Name:        "graphleague_archetype_counters",
			Description: "List champions whose archetype counters the given archetype.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"archetype": {Type: "string", Description: "Archetype name, e.g. Artillery or Juggernaut"},
					"lane":      laneSchema(),
				},
				Required: []string{"archetype"},
			},
		},
		{
			Name:        "graphleague_classify",
			Description: "Show the structured intent a question is routed to, without answering it.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"question": {Type: "string", Description: "The question to classify"},
				},
				Required: []string{"question"},
			},
		},
	}
}

// ListResources returns all registered resources.
func (s *Server) ListResources() []Resource {
	return []Resource{
		{
			URI:         "graphleague://overview",
			Name:        "Graph Overview",
			Description: "Statistics about the loaded champion graph",
			MimeType:    "text/plain",
		},
		{
			URI:         "graphleague://schema",
			Name:        "Graph Schema",
			Description: "Node labels, relationship types and the intent output schema",
			MimeType:    "text/plain",
		},
		{
			URI:         "graphleague://vocabulary",
			Name:        "Vocabulary",
			Description: "Roles, mechanics, archetypes and the archetype counter web",
			MimeType:    "application/json",
		},
	}
}

// CallTool executes a tool with the given arguments.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "graphleague_ask":
		question, _ := args["question"].(string)
		reply, err := s.svc.Ask(ctx, question)
		if err != nil {
			return "", err
		}
		return reply.Text, nil

	case "graphleague_classify":
		question, _ := args["question"].(string)
		out, err := json.MarshalIndent(intent.ToWire(s.svc.Classify(ctx, question)), "", "  ")
		return string(out), err

	case "graphleague_counter_pick":
		lane, err := laneArg(args)
		if err != nil {
			return "", err
		}
		champion, _ := args["champion"].(string)
		limit := s.counterLimit
		if l, ok := args["limit"].(float64); ok && l > 0 {
			limit = int(l)
		}
		in, err := intent.NewCounterPick(champion, lane)
		if err != nil {
			return "", err
		}
		return s.answer(ctx, dispatch.New(s.q, limit), in)

	case "graphleague_mechanic_search":
		lane, err := laneArg(args)
		if err != nil {
			return "", err
		}
		raw, _ := args["mechanic"].(string)
		m, err := vocab.NormalizeMechanic(raw)
		if err != nil {
			return "", err
		}
		in, err := intent.NewMechanicSearch(m, lane)
		if err != nil {
			return "", err
		}
		return s.answer(ctx, dispatch.New(s.q, s.counterLimit), in)

	case "graphleague_archetype_counters":
		lane, err := laneArg(args)
		if err != nil {
			return "", err
		}
		raw, _ := args["archetype"].(string)
		a, err := vocab.NormalizeArchetype(raw)
		if err != nil {
			return "", err
		}
		in, err := intent.NewArchetypeCounters(a, lane)
		if err != nil {
			return "", err
		}
		return s.answer(ctx, dispatch.New(s.q, s.counterLimit), in)

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

func (s *Server) answer(ctx context.Context, d *dispatch.Dispatcher, in intent.Intent) (string, error) {
	answer, err := d.Dispatch(ctx, in)
	if err != nil {
		return "", err
	}
	return narrate.TemplateNarrator{}.Narrate(ctx, "", answer)
}

func laneArg(args map[string]any) (vocab.Role, error) {
	raw, _ := args["lane"].(string)
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return vocab.NormalizeRole(raw)
}

// ReadResource reads a resource by URI.
func (s *Server) ReadResource(ctx context.Context, uri string) (string, error) {
	switch uri {
	case "graphleague://overview":
		return s.overview(ctx)
	case "graphleague://schema":
		return getSchema()
	case "graphleague://vocabulary":
		out, err := json.MarshalIndent(vocab.NewDocument(), "", "  ")
		return string(out), err
	default:
		return "", fmt.Errorf("unknown resource: %s", uri)
	}
}

// Run starts the MCP server with stdio transport.
func (s *Server) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	if stdin == nil || stdout == nil {
		return fmt.Errorf("stdin and stdout must not be nil")
	}

	reader := bufio.NewReader(stdin)
	encoder := json.NewEncoder(stdout)
	// MCP framing is one compact JSON message per line.

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		var req map[string]any
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("dropping malformed message", zap.Error(err))
			continue
		}

		// Notifications carry no id and get no response.
		if _, ok := req["id"]; !ok {
			continue
		}

		resp := s.handleRequest(ctx, req)
		if err := encoder.Encode(resp); err != nil {
			return err
		}
	}
}

func (s *Server) handleRequest(ctx context.Context, req map[string]any) map[string]any {
	method, _ := req["method"].(string)
	id := req["id"]

	switch method {
	case "initialize":
		return s.handleInitialize(id)
	case "ping":
		return result(id, map[string]any{})
	case "tools/list":
		return s.handleToolsList(id)
	case "tools/call":
		return s.handleToolsCall(ctx, id, req)
	case "resources/list":
		return s.handleResourcesList(id)
	case "resources/read":
		return s.handleResourcesRead(ctx, id, req)
	default:
		return errorResponse(id, -32601, "Method not found: "+method)
	}
}

func (s *Server) handleInitialize(id any) map[string]any {
	return result(id, map[string]any{
		"protocolVersion": protocolVersion,
		"serverInfo": map[string]any{
			"name":    s.impl.Name,
			"version": s.impl.Version,
		},
		"capabilities": map[string]any{
			"tools": map[string]any{
				"listChanged": false,
			},
			"resources": map[string]any{
				"listChanged": false,
			},
		},
	})
}

func (s *Server) handleToolsList(id any) map[string]any {
	tools := s.ListTools()
	toolList := make([]map[string]any, len(tools))
	for i, tool := range tools {
		toolList[i] = map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": tool.InputSchema,
		}
	}
	return result(id, map[string]any{"tools": toolList})
}

func (s *Server) handleToolsCall(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	name, _ := params["name"].(string)
	args, _ := params["arguments"].(map[string]any)

	text, err := s.CallTool(ctx, name, args)
	if err != nil {
		s.logger.Warn("tool call failed", zap.String("tool", name), zap.Error(err))
		return errorResponse(id, -32000, err.Error())
	}

	return result(id, map[string]any{
		"content": []map[string]any{
			{
				"type": "text",
				"text": text,
			},
		},
	})
}

func (s *Server) handleResourcesList(id any) map[string]any {
	resources := s.ListResources()
	resourceList := make([]map[string]any, len(resources))
	for i, res := range resources {
		resourceList[i] = map[string]any{
			"uri":         res.URI,
			"name":        res.Name,
			"description": res.Description,
			"mimeType":    res.MimeType,
		}
	}
	return result(id, map[string]any{"resources": resourceList})
}

func (s *Server) handleResourcesRead(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	uri, _ := params["uri"].(string)

	content, err := s.ReadResource(ctx, uri)
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}

	mimeType := "text/plain"
	for _, res := range s.ListResources() {
		if res.URI == uri {
			mimeType = res.MimeType
		}
	}

	return result(id, map[string]any{
		"contents": []map[string]any{
			{
				"uri":      uri,
				"mimeType": mimeType,
				"text":     content,
			},
		},
	})
}

// Resource Handlers

func (s *Server) overview(ctx context.Context) (string, error) {
	stats, err := s.stats.Stats(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", storage.ErrUnavailable, err)
	}

	var sb strings.Builder
	sb.WriteString("# GraphLeague Overview\n\n")
	fmt.Fprintf(&sb, "**Backend:** %s\n", stats.Backend)
	fmt.Fprintf(&sb, "**Nodes:** %d\n", stats.Nodes)
	fmt.Fprintf(&sb, "**Relationships:** %d\n", stats.Relationships)
	sb.WriteString("\n## Nodes by Label\n\n")
	for _, label := range graph.NodeLabels() {
		fmt.Fprintf(&sb, "- %s: %d\n", label, stats.ByLabel[string(label)])
	}
	sb.WriteString("\n## Tools\n\n")
	sb.WriteString("- graphleague_ask: free-text questions\n")
	sb.WriteString("- graphleague_counter_pick: ranked counters for an enemy champion\n")
	sb.WriteString("- graphleague_mechanic_search: champions with a mechanic\n")
	sb.WriteString("- graphleague_archetype_counters: champions that counter an archetype\n")

	return sb.String(), nil
}

func getSchema() (string, error) {
	var sb strings.Builder
	sb.WriteString("# GraphLeague Knowledge Graph Schema\n\n")
	sb.WriteString("## Node Labels\n\n")
	sb.WriteString("| Label | Description |\n")
	sb.WriteString("|-------|-------------|\n")
	sb.WriteString("| `champion` | A playable champion |\n")
	sb.WriteString("| `archetype` | Champion subclass, e.g. Diver |\n")
	sb.WriteString("| `mechanic` | Gameplay mechanic, e.g. Projectile Block |\n")
	sb.WriteString("| `role` | Lane position |\n")
	sb.WriteString("\n## Relationship Types\n\n")
	sb.WriteString("| Type | Source → Target |\n")
	sb.WriteString("|------|-----------------|\n")
	for _, rt := range graph.RelTypes() {
		src, tgt, _ := rt.Endpoints()
		fmt.Fprintf(&sb, "| `%s` | %s → %s |\n", rt, src, tgt)
	}

	out, err := json.MarshalIndent(intent.OutputSchema(), "", "  ")
	if err != nil {
		return "", err
	}
	sb.WriteString("\n## Intent Output Schema\n\n```json\n")
	sb.Write(out)
	sb.WriteString("\n```\n")

	return sb.String(), nil
}

// Helper functions

func result(id any, payload map[string]any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  payload,
	}
}

func errorResponse(id any, code int, message string) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}
}

package mcp

import (
	"bytes"
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"site-checker/internal/interfaces"
	"site-checker/internal/report"
	"site-checker/internal/target"
)

var validate = validator.New()

// Server exposes assessments as MCP tools over stdio.
type Server struct {
	server   *server.MCPServer
	assessor interfaces.Assessor
	logger   *zap.Logger
}

func NewServer(assessor interfaces.Assessor, version string, logger *zap.Logger) *Server {
	s := &Server{
		server:   server.NewMCPServer("site-checker", version),
		assessor: assessor,
		logger:   logger.With(zap.String("component", "mcp")),
	}
	s.server.AddTools(s.Tools()...)
	return s
}

// Run serves MCP requests on stdin and stdout until the input is closed.
func (s *Server) Run() error {
	s.logger.Debug("Serving MCP over stdio")
	return server.ServeStdio(s.server)
}

func (s *Server) Tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: assessTool(), Handler: s.handleAssess},
		{Tool: compareTool(), Handler: s.handleCompare},
	}
}

func assessTool() mcp.Tool {
	return mcp.NewTool(
		"assess_site",
		mcp.WithDescription("Run HTTPS, certificate, origin and reputation checks against a URL and return a Safe or Unsafe assessment"),
		mcp.WithString("url", mcp.Required(), mcp.Description("URL or bare hostname to assess")),
		mcp.WithString("format", mcp.Description("Result format: markdown (default) or json")),
	)
}

func compareTool() mcp.Tool {
	return mcp.NewTool(
		"compare_sites",
		mcp.WithDescription("Assess two URLs and explain which one is safer"),
		mcp.WithString("first_url", mcp.Required(), mcp.Description("First URL to compare")),
		mcp.WithString("second_url", mcp.Required(), mcp.Description("Second URL to compare")),
		mcp.WithString("format", mcp.Description("Result format: markdown (default) or json")),
	)
}

type assessArguments struct {
	URL    string `mapstructure:"url" validate:"required"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=markdown json"`
}

type compareArguments struct {
	FirstURL  string `mapstructure:"first_url" validate:"required"`
	SecondURL string `mapstructure:"second_url" validate:"required"`
	Format    string `mapstructure:"format" validate:"omitempty,oneof=markdown json"`
}

func decodeArguments(ctx context.Context, raw map[string]interface{}, out interface{}) error {
	if err := mapstructure.Decode(raw, out); err != nil {
		return err
	}
	return validate.StructCtx(ctx, out)
}

func outputFormat(s string) report.Format {
	if s == string(report.FormatJSON) {
		return report.FormatJSON
	}
	return report.FormatMarkdown
}

func (s *Server) handleAssess(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args assessArguments
	if err := decodeArguments(ctx, req.Params.Arguments, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	assessment, err := s.assessor.Assess(ctx, args.URL)
	if err != nil {
		return s.toolError("assess_site", err), nil
	}

	var buf bytes.Buffer
	if err := report.WriteAssessment(&buf, outputFormat(args.Format), assessment); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) handleCompare(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args compareArguments
	if err := decodeArguments(ctx, req.Params.Arguments, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	comparison, err := s.assessor.Compare(ctx, args.FirstURL, args.SecondURL)
	if err != nil {
		return s.toolError("compare_sites", err), nil
	}

	var buf bytes.Buffer
	if err := report.WriteComparison(&buf, outputFormat(args.Format), comparison); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, target.ErrInvalidURL) {
		return mcp.NewToolResultError(err.Error())
	}
	s.logger.Error("Tool call failed", zap.String("tool", tool), zap.Error(err))
	return mcp.NewToolResultError("assessment failed: " + err.Error())
}

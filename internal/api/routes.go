package api

import (
	"net/http"

	"github.com/emicklei/go-restful/v3"
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/agent-fwk/internal/models"
)

const (
	tagAgent     = "agent"
	tagFramework = "framework"
)

// RegisterRoutes mounts the agent endpoints at the root of the container.
func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)
	ws.Path("/").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.Route(ws.GET("/").To(handler.Root).
		Doc("Basic agent info").
		Metadata(restfulspec.KeyOpenAPITags, []string{tagAgent}).
		Writes(models.HealthResponse{}).
		Returns(http.StatusOK, "OK", models.HealthResponse{}))

	ws.Route(ws.GET("/healthz").To(handler.Health).
		Doc("Health check for monitoring").
		Metadata(restfulspec.KeyOpenAPITags, []string{tagAgent}).
		Writes(models.HealthResponse{}).
		Returns(http.StatusOK, "Healthy or degraded", models.HealthResponse{}).
		Returns(http.StatusServiceUnavailable, "Unhealthy", models.HealthResponse{}))

	ws.Route(ws.GET("/status").To(handler.Status).
		Doc("Detailed agent status and capabilities").
		Metadata(restfulspec.KeyOpenAPITags, []string{tagAgent}).
		Writes(models.AgentStatusResponse{}).
		Returns(http.StatusOK, "OK", models.AgentStatusResponse{}))

	ws.Route(ws.POST("/chat").To(handler.Chat).
		Doc("Main conversation endpoint").
		Metadata(restfulspec.KeyOpenAPITags, []string{tagAgent}).
		Reads(models.ChatRequest{}).
		Writes(models.ChatResponse{}).
		Returns(http.StatusOK, "OK", models.ChatResponse{}).
		Returns(http.StatusBadRequest, "Invalid request", middleware.ErrorResponse{}).
		Returns(http.StatusInternalServerError, "Processing error", middleware.ErrorResponse{}))

	ws.Route(ws.GET("/fwk/version").To(handler.FrameworkVersion).
		Doc("Current framework version").
		Metadata(restfulspec.KeyOpenAPITags, []string{tagFramework}).
		Writes(models.VersionInfo{}).
		Returns(http.StatusOK, "OK", models.VersionInfo{}))

	ws.Route(ws.GET("/fwk/available").To(handler.AvailableVersions).
		Doc("List available framework versions").
		Metadata(restfulspec.KeyOpenAPITags, []string{tagFramework}).
		Writes([]models.FrameworkVersion{}).
		Returns(http.StatusOK, "OK", []models.FrameworkVersion{}))

	ws.Route(ws.POST("/fwk/update").To(handler.UpdateFramework).
		Doc("Update framework to target version, with automatic testing").
		Consumes(restful.MIME_JSON, restful.MIME_OCTET).
		Metadata(restfulspec.KeyOpenAPITags, []string{tagFramework}).
		Param(ws.QueryParameter("target_version", "Target framework version (e.g. v1.2.0)").
			DataType("string").
			Required(true)).
		Param(ws.QueryParameter("run_tests", "Run the test suite after updating").
			DataType("boolean").
			DefaultValue("true").
			Required(false)).
		Writes(models.UpdateResult{}).
		Returns(http.StatusOK, "Update attempted", models.UpdateResult{}).
		Returns(http.StatusBadRequest, "Invalid version", middleware.ErrorResponse{}).
		Returns(http.StatusNotFound, "Version not published", middleware.ErrorResponse{}).
		Returns(http.StatusConflict, "Update already in progress", middleware.ErrorResponse{}))

	ws.Route(ws.POST("/fwk/clone-test").To(handler.CloneTest).
		Doc("Create a test clone for safe migration testing").
		Consumes(restful.MIME_JSON, restful.MIME_OCTET).
		Metadata(restfulspec.KeyOpenAPITags, []string{tagFramework}).
		Param(ws.QueryParameter("clone_name", "Directory name of the clone").
			DataType("string").
			Required(false)).
		Writes(models.CloneResult{}).
		Returns(http.StatusOK, "OK", models.CloneResult{}).
		Returns(http.StatusBadRequest, "Invalid clone name", middleware.ErrorResponse{}).
		Returns(http.StatusConflict, "Clone already exists", middleware.ErrorResponse{}))

	ws.Route(ws.GET("/fwk/migration-info").To(handler.MigrationInfo).
		Doc("Migration details for a target version").
		Metadata(restfulspec.KeyOpenAPITags, []string{tagFramework}).
		Param(ws.QueryParameter("target_version", "Target framework version").
			DataType("string").
			Required(true)).
		Writes(models.MigrationInfo{}).
		Returns(http.StatusOK, "OK", models.MigrationInfo{}).
		Returns(http.StatusBadRequest, "Invalid version", middleware.ErrorResponse{}))

	ws.Route(ws.GET("/fwk/changelog").To(handler.Changelog).
		Doc("Changelog of available updates").
		Metadata(restfulspec.KeyOpenAPITags, []string{tagFramework}).
		Writes(models.ChangelogResponse{}).
		Returns(http.StatusOK, "OK", models.ChangelogResponse{}))

	container.Add(ws)
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humamux"
	"github.com/frictionlessdata/datapackage-go/datapackage"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/net/netutil"

	"pathsurv/auth"
	"pathsurv/config"
	"pathsurv/geocoder"
	"pathsurv/journal"
	"pathsurv/records"
	"pathsurv/store"
	"pathsurv/tabular"
)

// Version numbers
var majorVersion = 0
var minorVersion = 1
var patchVersion = 0

// Version string
var version = fmt.Sprintf("%d.%d.%d", majorVersion, minorVersion, patchVersion)

// This type implements the SurveillanceService interface, managing uploaded
// pathogen surveillance records and their staged public disclosure.
type surveillance struct {
	// name of the service
	Name string
	// service version identifier
	Version string
	// time which the service was started
	StartTime time.Time
	// port on which the service currently runs
	Port int
	// router for REST endpoints
	Router *mux.Router
	// API wrapper
	API huma.API
	// HTTP server.
	Server *http.Server
	// document store holding the surveillance records
	Db *store.Store
	// the collection each category's documents live in
	Collections map[records.Category]string
	// geocoder used to resolve sample locations (nil disables geocoding)
	Geocoder *geocoder.Geocoder
	// authorizer for preview access to embargoed data
	Authorizer *auth.PreviewAuthorizer
}

// resolves a category path fragment, mapping unknown names to 404s
func parseCategory(name string) (records.Category, error) {
	category, err := records.ParseCategory(name)
	if err != nil {
		return category, huma.Error404NotFound(err.Error())
	}
	return category, nil
}

type ServiceInfoOutput struct {
	Body ServiceInfoResponse `doc:"information about the service itself"`
}

// handler method for root (no authorization needed for this one)
func (service *surveillance) getRoot(ctx context.Context,
	input *struct{}) (*ServiceInfoOutput, error) {

	slog.Info("Querying root endpoint...")
	return &ServiceInfoOutput{
		Body: ServiceInfoResponse{
			Name:          service.Name,
			Version:       service.Version,
			Uptime:        int(service.uptime()),
			Documentation: "/docs",
		},
	}, nil
}

// constructs an importer whose normalizers embargo data for the given number
// of days (the configured stage time if non-positive)
func (service *surveillance) newImporter(stageDays int) *records.Importer {
	if stageDays <= 0 {
		stageDays = config.Store.StageTime
	}
	return &records.Importer{
		Store:       service.Db,
		Collections: service.Collections,
		Normalizers: map[records.Category]records.Normalizer{
			records.Samples:    records.NewSampleNormalizer(stageDays, service.Geocoder, nil),
			records.Phenotypes: records.NewPhenotypeNormalizer(stageDays, nil),
			records.Genotypes:  records.NewGenotypeNormalizer(stageDays, nil),
			records.Files:      records.NewFilesNormalizer(config.Store.FilesHost),
		},
	}
}

type ImportOutput struct {
	Body   ImportResponse `doc:"A summary of the imported batch"`
	Status int
}

// handler method for importing a batch of records into a category
func (service *surveillance) importRecords(ctx context.Context,
	input *struct {
		Category    string        `path:"category" example:"samples" doc:"the category the records belong to"`
		Body        ImportRequest `doc:"The body of a POST request for a record import"`
		ContentType string        `header:"Content-Type" doc:"Content-Type header (must be application/json)"`
	}) (*ImportOutput, error) {

	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	// the batch arrives either as pre-parsed JSON records or as a delimited
	// tabular payload whose header line names the fields
	var headers []string
	var rows []records.Document
	if len(input.Body.Records) > 0 {
		rows = input.Body.Records
	} else {
		delimiter := tabular.DefaultDelimiter
		if input.Body.Delimiter != "" {
			delimiter = []rune(input.Body.Delimiter)[0]
		}
		var stringRows []map[string]string
		headers, stringRows, err = tabular.Parse(strings.NewReader(input.Body.Data), delimiter)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
		rows = make([]records.Document, len(stringRows))
		for i, stringRow := range stringRows {
			row := make(records.Document)
			for field, value := range stringRow {
				row[field] = value
			}
			rows[i] = row
		}
	}

	slog.Info(fmt.Sprintf("Importing %d records into %s...", len(rows), category))
	importer := service.newImporter(input.Body.StageTime)
	importer.DryRun = input.Body.Preview
	startTime := time.Now()
	result, err := importer.Import(ctx, category, headers, rows)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	stopTime := time.Now()

	// a previewed batch writes nothing, so there's nothing to journal
	jobId := uuid.New()
	if !input.Body.Preview {
		service.journalImport(jobId, category, startTime, stopTime, result)
	}

	return &ImportOutput{
		Body: ImportResponse{
			Id:       jobId,
			Category: result.Category,
			Total:    result.Total,
			Imported: result.Imported,
			Errors:   result.Errors,
			Status:   string(result.Status),
		},
		Status: http.StatusCreated,
	}, nil
}

// records a completed batch in the import journal (journal trouble doesn't
// fail the import itself, since the data is already in the store)
func (service *surveillance) journalImport(jobId uuid.UUID, category records.Category,
	startTime, stopTime time.Time, result records.BatchResult) {

	if !journal.IsOpen() {
		return
	}
	var manifest *datapackage.Package
	if result.Imported > 0 {
		var err error
		manifest, err = journal.NewManifest(category.String(), result.ImportedIDs)
		if err != nil {
			slog.Warn(fmt.Sprintf("Couldn't build a manifest for import %s: %s", jobId, err))
			return
		}
	}
	err := journal.RecordImport(journal.Record{
		Id:          jobId,
		Category:    category.String(),
		StartTime:   startTime,
		StopTime:    stopTime,
		Status:      string(result.Status),
		NumRecords:  result.Total,
		NumImported: result.Imported,
		Manifest:    manifest,
	})
	if err != nil {
		slog.Warn(fmt.Sprintf("Couldn't journal import %s: %s", jobId, err))
	}
}

type SearchResultsOutput struct {
	Body SearchResultsResponse `doc:"Documents in the category that match the given filter"`
}

// handler method for searching a category for matching documents
func (service *surveillance) searchRecords(ctx context.Context,
	input *struct {
		Category    string        `path:"category" example:"samples" doc:"the category to search"`
		Body        SearchRequest `doc:"The body of a POST request for a document search"`
		ContentType string        `header:"Content-Type" doc:"Content-Type header (must be application/json)"`
	}) (*SearchResultsOutput, error) {

	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	slog.Info(fmt.Sprintf("Searching %s for matching documents...", category))
	docs, err := service.findRecords(category, input.Body.Filter, input.Body.Fields,
		input.Body.Preview, input.Body.PreviewToken)
	if err != nil {
		return nil, err
	}
	return &SearchResultsOutput{
		Body: SearchResultsResponse{
			Category: category.String(),
			Results:  docs,
		},
	}, nil
}

// handler method for dumping every publicly visible document in a category
func (service *surveillance) dumpRecords(ctx context.Context,
	input *struct {
		Category     string `path:"category" example:"samples" doc:"the category to dump"`
		Preview      bool   `query:"preview" doc:"if true, embargoed data is included in the results"`
		PreviewToken string `query:"preview_token" doc:"a token authorizing preview access"`
	}) (*SearchResultsOutput, error) {

	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	slog.Info(fmt.Sprintf("Dumping all documents in %s...", category))
	docs, err := service.findRecords(category, nil, nil, input.Preview, input.PreviewToken)
	if err != nil {
		return nil, err
	}
	return &SearchResultsOutput{
		Body: SearchResultsResponse{
			Category: category.String(),
			Results:  docs,
		},
	}, nil
}

// fetches a category's documents matching the given filter. An authorized
// preview sees the stored documents as they are; everyone else sees them with
// embargoed data removed. Projection runs after the disclosure filter so a
// field list can't be used to strip the embargo markers.
func (service *surveillance) findRecords(category records.Category, filter records.Document,
	fields []string, preview bool, previewToken string) ([]store.Document, error) {

	collection := service.Collections[category]
	if preview {
		if !service.Authorizer.Authorize(previewToken) {
			return nil, huma.Error401Unauthorized("Invalid preview token")
		}
		docs, err := service.Db.FindMatching(collection, filter, fields)
		if err != nil {
			return nil, err
		}
		return records.StripInternalIDs(docs), nil
	}
	docs, err := service.Db.FindMatching(collection, filter, nil)
	if err != nil {
		return nil, err
	}
	docs = records.Disclose(docs, time.Now())
	return records.Project(docs, fields), nil
}

type DeleteOutput struct {
	Body DeleteResponse `doc:"The number of documents deleted from the category"`
}

// handler method for deleting matching documents from a category
func (service *surveillance) deleteRecords(ctx context.Context,
	input *struct {
		Category    string        `path:"category" example:"samples" doc:"the category to delete from"`
		Body        DeleteRequest `doc:"The body of a POST request for a document deletion"`
		ContentType string        `header:"Content-Type" doc:"Content-Type header (must be application/json)"`
	}) (*DeleteOutput, error) {

	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}
	// an empty filter would empty the whole collection
	if len(input.Body.Filter) == 0 {
		return nil, huma.Error400BadRequest("A non-empty filter is required for deletion")
	}

	slog.Info(fmt.Sprintf("Deleting matching documents from %s...", category))
	deleted, err := service.Db.DeleteMatching(service.Collections[category], input.Body.Filter)
	if err != nil {
		return nil, err
	}
	return &DeleteOutput{
		Body: DeleteResponse{
			Category: category.String(),
			Deleted:  deleted,
		},
	}, nil
}

type ImportRecordsOutput struct {
	Body []journal.Record `doc:"Import batches journaled within the given time range"`
}

// handler method for listing journaled import batches within a time range
func (service *surveillance) getImports(ctx context.Context,
	input *struct {
		Start string `query:"start" example:"2026-08-01T00:00:00Z" doc:"the beginning of the time range (RFC 3339)"`
		Stop  string `query:"stop" example:"2026-08-31T00:00:00Z" doc:"the end of the time range (RFC 3339, now if omitted)"`
	}) (*ImportRecordsOutput, error) {

	start := time.Time{}
	stop := time.Now()
	var err error
	if input.Start != "" {
		start, err = time.Parse(time.RFC3339, input.Start)
		if err != nil {
			return nil, huma.Error400BadRequest(fmt.Sprintf("Invalid start time: %s", input.Start))
		}
	}
	if input.Stop != "" {
		stop, err = time.Parse(time.RFC3339, input.Stop)
		if err != nil {
			return nil, huma.Error400BadRequest(fmt.Sprintf("Invalid stop time: %s", input.Stop))
		}
	}

	slog.Info("Querying the import journal...")
	imports, err := journal.Records(start, stop)
	if err != nil {
		return nil, err
	}
	return &ImportRecordsOutput{Body: imports}, nil
}

// returns the uptime for the service in seconds
func (service *surveillance) uptime() float64 {
	return time.Since(service.StartTime).Seconds()
}

// constructs a pathogen surveillance service given our configuration
func NewSurveillanceService() (SurveillanceService, error) {

	// validate our configuration
	if config.Store.Database == "" {
		return nil, fmt.Errorf("No store database was specified.")
	}

	service := new(surveillance)
	service.Name = "pathsurv"
	service.Version = version
	service.Port = -1
	service.Collections = map[records.Category]string{
		records.Samples:    config.Store.SamplesCollection,
		records.Phenotypes: config.Store.PhenotypesCollection,
		records.Genotypes:  config.Store.GenotypesCollection,
		records.Files:      config.Store.FilesCollection,
	}

	// open the document store (categories may share a collection)
	var collectionNames []string
	for _, name := range service.Collections {
		if !slices.Contains(collectionNames, name) {
			collectionNames = append(collectionNames, name)
		}
	}
	dbPath := filepath.Join(config.Service.DataDirectory, config.Store.Database+".db")
	db, err := store.Open(dbPath, collectionNames)
	if err != nil {
		return nil, err
	}
	service.Db = db

	// set up the geocoder if one is configured
	if config.Geocoders.Default != "" {
		provider := config.Geocoders.Providers[config.Geocoders.Default]
		service.Geocoder, err = geocoder.New(config.Geocoders.Default, provider.URI)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	// set up preview authorization
	service.Authorizer, err = auth.NewPreviewAuthorizer(config.Preview.Key)
	if err != nil {
		db.Close()
		return nil, err
	}

	// set up routing
	service.Router = mux.NewRouter()
	api := humamux.New(service.Router, huma.DefaultConfig(service.Name, service.Version))
	huma.Get(api, "/", service.getRoot)

	// API v1
	huma.Post(api, "/api/v1/categories/{category}/import", service.importRecords)
	huma.Post(api, "/api/v1/categories/{category}/search", service.searchRecords)
	huma.Post(api, "/api/v1/categories/{category}/delete", service.deleteRecords)
	huma.Get(api, "/api/v1/categories/{category}/dump", service.dumpRecords)
	huma.Get(api, "/api/v1/imports", service.getImports)
	AddDocEndpoints(service.Router)

	return service, nil
}

// starts the pathogen surveillance service
func (service *surveillance) Start(port int) error {
	slog.Info(fmt.Sprintf("Starting %s service on port %d...", service.Name, port))
	slog.Info(fmt.Sprintf("(Accepting up to %d connections)", config.Service.MaxConnections))

	service.StartTime = time.Now()

	// create a listener that limits the number of incoming connections
	service.Port = port
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return err
	}
	defer listener.Close()
	listener = netutil.LimitListener(listener, config.Service.MaxConnections)

	// open the import journal
	err = journal.Init()
	if err != nil {
		return err
	}

	// start the server
	service.Server = &http.Server{
		Handler: service.Router}
	err = service.Server.Serve(listener)

	// we don't report the server closing as an error
	if err != http.ErrServerClosed {
		return err
	}
	return nil
}

// gracefully shuts down the service without interrupting active connections
func (service *surveillance) Shutdown(ctx context.Context) error {
	journal.Finalize()
	var err error
	if service.Server != nil {
		err = service.Server.Shutdown(ctx)
	}
	service.Db.Close()
	return err
}

// closes down the service abruptly, freeing all resources
func (service *surveillance) Close() {
	journal.Finalize()
	if service.Server != nil {
		service.Server.Close()
	}
	service.Db.Close()
}

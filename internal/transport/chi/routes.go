package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// DescribeFieldParams are the query parameters of the describe endpoint.
type DescribeFieldParams struct {
	// Apply stores the generated description on the field.
	Apply *bool `form:"apply,omitempty" json:"apply,omitempty"`
}

// ExportDatasetParams are the query parameters of the export endpoint.
type ExportDatasetParams struct {
	// Format is csv (default) or json.
	Format *string `form:"format,omitempty" json:"format,omitempty"`
}

// ServerInterface is implemented by Server.
type ServerInterface interface {
	HealthCheck(w http.ResponseWriter, r *http.Request)
	Metrics(w http.ResponseWriter, r *http.Request)

	CreateMapping(w http.ResponseWriter, r *http.Request)
	ImportMapping(w http.ResponseWriter, r *http.Request)
	ListMappings(w http.ResponseWriter, r *http.Request)
	GetMapping(w http.ResponseWriter, r *http.Request, mapping string)
	UpdateMapping(w http.ResponseWriter, r *http.Request, mapping string)
	DeleteMapping(w http.ResponseWriter, r *http.Request, mapping string)
	ValidateRows(w http.ResponseWriter, r *http.Request, mapping string)
	DescribeField(w http.ResponseWriter, r *http.Request, mapping, field string, params DescribeFieldParams)

	CreateDataset(w http.ResponseWriter, r *http.Request, mapping string)
	ListDatasets(w http.ResponseWriter, r *http.Request, mapping string)
	GetDataset(w http.ResponseWriter, r *http.Request, dataset string)
	UpdateDataset(w http.ResponseWriter, r *http.Request, dataset string)
	DeleteDataset(w http.ResponseWriter, r *http.Request, dataset string)
	ValidateDataset(w http.ResponseWriter, r *http.Request, dataset string)
	ExportDataset(w http.ResponseWriter, r *http.Request, dataset string, params ExportDatasetParams)
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError reports a path or query parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// HandlerWithOptions mounts si on opts.BaseRouter (or a new router).
func HandlerWithOptions(si ServerInterface, opts ChiServerOptions) http.Handler {
	r := opts.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if opts.ErrorHandlerFunc == nil {
		opts.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		}
	}
	wrapper := serverInterfaceWrapper{handler: si, errorHandlerFunc: opts.ErrorHandlerFunc}

	r.Group(func(r chi.Router) {
		r.Get(opts.BaseURL+"/health", si.HealthCheck)
		r.Get(opts.BaseURL+"/metrics", si.Metrics)

		r.Post(opts.BaseURL+"/mappings", si.CreateMapping)
		r.Post(opts.BaseURL+"/mappings/import", si.ImportMapping)
		r.Get(opts.BaseURL+"/mappings", si.ListMappings)
		r.Get(opts.BaseURL+"/mappings/{mapping}", wrapper.GetMapping)
		r.Put(opts.BaseURL+"/mappings/{mapping}", wrapper.UpdateMapping)
		r.Delete(opts.BaseURL+"/mappings/{mapping}", wrapper.DeleteMapping)
		r.Post(opts.BaseURL+"/mappings/{mapping}/validate", wrapper.ValidateRows)
		r.Post(opts.BaseURL+"/mappings/{mapping}/fields/{field}/describe", wrapper.DescribeField)
		r.Post(opts.BaseURL+"/mappings/{mapping}/datasets", wrapper.CreateDataset)
		r.Get(opts.BaseURL+"/mappings/{mapping}/datasets", wrapper.ListDatasets)

		r.Get(opts.BaseURL+"/datasets/{dataset}", wrapper.GetDataset)
		r.Patch(opts.BaseURL+"/datasets/{dataset}", wrapper.UpdateDataset)
		r.Delete(opts.BaseURL+"/datasets/{dataset}", wrapper.DeleteDataset)
		r.Get(opts.BaseURL+"/datasets/{dataset}/validation", wrapper.ValidateDataset)
		r.Get(opts.BaseURL+"/datasets/{dataset}/export", wrapper.ExportDataset)
	})
	return r
}

// serverInterfaceWrapper binds path and query parameters before dispatch.
type serverInterfaceWrapper struct {
	handler          ServerInterface
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (w *serverInterfaceWrapper) pathParam(rw http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		w.errorHandlerFunc(rw, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return "", false
	}
	return v, true
}

func (w *serverInterfaceWrapper) withMapping(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if mapping, ok := w.pathParam(rw, r, "mapping"); ok {
			fn(rw, r, mapping)
		}
	}
}

func (w *serverInterfaceWrapper) withDataset(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if dataset, ok := w.pathParam(rw, r, "dataset"); ok {
			fn(rw, r, dataset)
		}
	}
}

func (w *serverInterfaceWrapper) GetMapping(rw http.ResponseWriter, r *http.Request) {
	w.withMapping(w.handler.GetMapping)(rw, r)
}

func (w *serverInterfaceWrapper) UpdateMapping(rw http.ResponseWriter, r *http.Request) {
	w.withMapping(w.handler.UpdateMapping)(rw, r)
}

func (w *serverInterfaceWrapper) DeleteMapping(rw http.ResponseWriter, r *http.Request) {
	w.withMapping(w.handler.DeleteMapping)(rw, r)
}

func (w *serverInterfaceWrapper) ValidateRows(rw http.ResponseWriter, r *http.Request) {
	w.withMapping(w.handler.ValidateRows)(rw, r)
}

func (w *serverInterfaceWrapper) CreateDataset(rw http.ResponseWriter, r *http.Request) {
	w.withMapping(w.handler.CreateDataset)(rw, r)
}

func (w *serverInterfaceWrapper) ListDatasets(rw http.ResponseWriter, r *http.Request) {
	w.withMapping(w.handler.ListDatasets)(rw, r)
}

func (w *serverInterfaceWrapper) DescribeField(rw http.ResponseWriter, r *http.Request) {
	mapping, ok := w.pathParam(rw, r, "mapping")
	if !ok {
		return
	}
	field, ok := w.pathParam(rw, r, "field")
	if !ok {
		return
	}

	var params DescribeFieldParams
	if err := runtime.BindQueryParameter("form", true, false, "apply", r.URL.Query(), &params.Apply); err != nil {
		w.errorHandlerFunc(rw, r, &InvalidParamFormatError{ParamName: "apply", Err: err})
		return
	}
	w.handler.DescribeField(rw, r, mapping, field, params)
}

func (w *serverInterfaceWrapper) GetDataset(rw http.ResponseWriter, r *http.Request) {
	w.withDataset(w.handler.GetDataset)(rw, r)
}

func (w *serverInterfaceWrapper) UpdateDataset(rw http.ResponseWriter, r *http.Request) {
	w.withDataset(w.handler.UpdateDataset)(rw, r)
}

func (w *serverInterfaceWrapper) DeleteDataset(rw http.ResponseWriter, r *http.Request) {
	w.withDataset(w.handler.DeleteDataset)(rw, r)
}

func (w *serverInterfaceWrapper) ValidateDataset(rw http.ResponseWriter, r *http.Request) {
	w.withDataset(w.handler.ValidateDataset)(rw, r)
}

func (w *serverInterfaceWrapper) ExportDataset(rw http.ResponseWriter, r *http.Request) {
	dataset, ok := w.pathParam(rw, r, "dataset")
	if !ok {
		return
	}

	var params ExportDatasetParams
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &params.Format); err != nil {
		w.errorHandlerFunc(rw, r, &InvalidParamFormatError{ParamName: "format", Err: err})
		return
	}
	w.handler.ExportDataset(rw, r, dataset, params)
}

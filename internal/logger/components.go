package logger

// Component names used with For.
const (
	ComponentScheduler   = "fetch_scheduler"
	ComponentEntityStore = "entity_store"
	ComponentPatches     = "patch_store"
	ComponentChangeset   = "changeset"
	ComponentUpload      = "upload"
	ComponentSubmit      = "submit"
	ComponentOverpass    = "overpass"
	ComponentOSMAPI      = "osmapi"
	ComponentCLI         = "cli"
)

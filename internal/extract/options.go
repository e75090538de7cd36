package extract

// Options configure one extraction request. Zero values mean "use the
// mode-dependent default"; explicit caller values always win over both
// computed defaults and repository-supplied config.
type Options struct {
	Mode             Mode
	FallbackMode     FallbackMode
	MaxFiles         int
	MaxFileSizeKB    int
	MinSkeletonFiles int
	IncludePatterns  []string
	ExcludePatterns  []string

	PreserveStructure   bool
	KeepComments        *bool
	IncludeTypes        *bool
	RemoveBusinessLogic *bool
	StrictRedaction     bool
}

// Mode-dependent defaults. Skeleton mode considers more files because the
// per-file output is much smaller. DefaultMaxFileSizeKB is exported so the
// fetch layer can skip downloading content the engine would drop anyway.
const (
	defaultSkeletonMaxFiles = 30
	defaultCopierMaxFiles   = 20
	DefaultMaxFileSizeKB    = 100
	defaultMinSkeletonFiles = 3
)

// withDefaults fills unset fields from the mode-dependent defaults and the
// optional recommended patterns from structure analysis.
func (o Options) withDefaults(recommended []string) Options {
	if o.Mode == "" {
		o.Mode = ModeSkeleton
	}
	if o.FallbackMode == "" {
		o.FallbackMode = FallbackCopier
	}
	if o.MaxFiles == 0 {
		if o.Mode == ModeSkeleton {
			o.MaxFiles = defaultSkeletonMaxFiles
		} else {
			o.MaxFiles = defaultCopierMaxFiles
		}
	}
	if o.MaxFileSizeKB == 0 {
		o.MaxFileSizeKB = DefaultMaxFileSizeKB
	}
	if o.MinSkeletonFiles == 0 {
		o.MinSkeletonFiles = defaultMinSkeletonFiles
	}
	if len(o.IncludePatterns) == 0 {
		if len(recommended) > 0 {
			o.IncludePatterns = recommended
		} else {
			o.IncludePatterns = []string{"**/*"}
		}
	}
	if o.KeepComments == nil {
		o.KeepComments = boolPtr(true)
	}
	if o.IncludeTypes == nil {
		o.IncludeTypes = boolPtr(true)
	}
	if o.RemoveBusinessLogic == nil {
		o.RemoveBusinessLogic = boolPtr(o.Mode == ModeSkeleton)
	}
	return o
}

// applyRepoConfig layers repository-supplied overrides under explicit
// caller options: a repo config value only lands where the caller left the
// field unset.
func (o Options) applyRepoConfig(rc *RepoConfig) Options {
	if rc == nil {
		return o
	}
	if o.Mode == "" && rc.Mode != "" {
		o.Mode = Mode(rc.Mode)
	}
	if o.MaxFiles == 0 && rc.MaxFiles > 0 {
		o.MaxFiles = rc.MaxFiles
	}
	if o.MaxFileSizeKB == 0 && rc.MaxFileSizeKB > 0 {
		o.MaxFileSizeKB = rc.MaxFileSizeKB
	}
	if len(o.IncludePatterns) == 0 && len(rc.IncludePatterns) > 0 {
		o.IncludePatterns = rc.IncludePatterns
	}
	if len(o.ExcludePatterns) == 0 && len(rc.ExcludePatterns) > 0 {
		o.ExcludePatterns = rc.ExcludePatterns
	}
	return o
}

func boolPtr(v bool) *bool { return &v }

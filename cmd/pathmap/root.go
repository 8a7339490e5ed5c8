package main

import (
	"flag"

	"github.com/hdwhdw/pathmap/pkg/config"
	"github.com/hdwhdw/pathmap/pkg/gnoi/client"
	"github.com/hdwhdw/pathmap/pkg/pathutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"
)

// newClient dials the gNOI server; replaced in tests
var newClient = client.NewClient

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "pathmap",
		Short:   "Map logical paths onto the file system",
		Version: version,
		Long: `pathmap translates logical paths such as \Acme\Blog\ShowController
into file-system paths using a single rule that pairs a logical base with a
file-system base. The rule can come from flags, a YAML file, a Redis hash or a
PathMapping custom resource.`,
		SilenceUsage: true,
	}

	// Initialize klog
	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	root.PersistentFlags().AddGoFlagSet(klogFlags)

	root.AddCommand(
		newResolveCmd(),
		newServeCmd(),
		newStatCmd(),
		newGetCmd(),
		newTransferCmd(),
	)
	return root
}

// ruleFlags are shared by every command that needs a mapping rule
type ruleFlags struct {
	logicalBase string
	logicalSep  string
	fsBase      string
	fsSep       string
	fileExt     string

	file string

	redisAddr string
	redisDB   int
	redisKey  string

	kubeconfig string
	namespace  string
	name       string
}

func (f *ruleFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.logicalBase, "logical-base", "", "Logical path base the rule applies to")
	fs.StringVar(&f.logicalSep, "logical-sep", `\`, "Separator between logical path segments")
	fs.StringVar(&f.fsBase, "fs-base", "", "File-system base the logical base maps to")
	fs.StringVar(&f.fsSep, "fs-sep", pathutil.DefaultFSSeparator, "File-system separator used in output paths")
	fs.StringVar(&f.fileExt, "file-ext", "", "Extension appended to paths below the logical base")

	fs.StringVar(&f.file, "config", "", "YAML rule file; overrides every other rule source")

	fs.StringVar(&f.redisAddr, "redis-addr", "", "Read the rule from this Redis endpoint")
	fs.IntVar(&f.redisDB, "redis-db", config.DefaultRedisDB, "Redis database holding the rule")
	fs.StringVar(&f.redisKey, "redis-key", config.DefaultRedisKey, "Redis hash holding the rule")

	fs.StringVar(&f.kubeconfig, "kubeconfig", "", "Kubeconfig for reading a PathMapping resource (in-cluster if empty)")
	fs.StringVar(&f.namespace, "namespace", "default", "Namespace of the PathMapping resource")
	fs.StringVar(&f.name, "path-mapping", "", "Read the rule from this PathMapping resource")
}

func (f *ruleFlags) options() config.Options {
	return config.Options{
		File:       f.file,
		RedisAddr:  f.redisAddr,
		RedisDB:    f.redisDB,
		RedisKey:   f.redisKey,
		Namespace:  f.namespace,
		Name:       f.name,
		KubeConfig: f.kubeconfig,
		Fallback: pathutil.Rule{
			LogicalBase:      f.logicalBase,
			LogicalSeparator: f.logicalSep,
			FSBase:           f.fsBase,
			FSSeparator:      f.fsSep,
			FileExtension:    f.fileExt,
		},
	}
}

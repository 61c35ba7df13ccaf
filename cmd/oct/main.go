// Octarine CLI - boots the runtime core and inspects its state.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/octarine-lang/octarine/rt"

	_ "github.com/tliron/commonlog/simple"
)

// bindFlags collects repeated -bind name=value pairs.
type bindFlags []string

func (b *bindFlags) String() string {
	return strings.Join(*b, ",")
}

func (b *bindFlags) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("expected name=value, got %q", v)
	}
	*b = append(*b, v)
	return nil
}

func main() {
	var binds bindFlags
	verbose := flag.Bool("v", false, "Verbose output")
	nsName := flag.String("ns", "", "Define an extra namespace with this name")
	imagePath := flag.String("image", "", "Write the root namespace image (CBOR) to this path")
	flag.Var(&binds, "bind", "Bind name=value as an owned String in the root namespace (repeatable)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: oct [options]\n\n")
		fmt.Fprintf(os.Stderr, "Boots an Octarine runtime, applies bindings, and tears it down.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  oct -bind greeting=octarine            # Bind one value and exit\n")
		fmt.Fprintf(os.Stderr, "  oct -bind a=1 -bind b=2 -image ns.cbor # Snapshot the root namespace\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)
	log := commonlog.GetLogger("oct")

	runtime, err := rt.NewRuntime()
	if err != nil {
		log.Errorf("runtime construction failed: %v", err)
		os.Exit(1)
	}
	ctx := runtime.RootContext()
	log.Infof("runtime %s up, root namespace %q", runtime.ID(), ctx.Namespace().Name().GoString())

	if *nsName != "" {
		if _, err := runtime.DefineNamespace(ctx, *nsName); err != nil {
			log.Errorf("define namespace %q: %v", *nsName, err)
			runtime.Close()
			os.Exit(1)
		}
		log.Infof("defined namespace %q", *nsName)
	}

	for _, pair := range binds {
		name, value, _ := strings.Cut(pair, "=")
		s, err := rt.NewString(ctx, ctx.Heap(), value)
		if err != nil {
			log.Errorf("allocate %q: %v", value, err)
			runtime.Close()
			os.Exit(1)
		}
		if err := ctx.Namespace().BindOwned(ctx, name, rt.Own[rt.String](&s)); err != nil {
			log.Errorf("bind %q: %v", name, err)
			runtime.Close()
			os.Exit(1)
		}
		log.Infof("bound %q (%d bytes)", name, len(value))
	}

	if *imagePath != "" {
		img := rt.SnapshotNamespace(ctx, ctx.Namespace())
		data, err := rt.MarshalImage(img)
		if err != nil {
			log.Errorf("marshal image: %v", err)
			runtime.Close()
			os.Exit(1)
		}
		if err := os.WriteFile(*imagePath, data, 0644); err != nil {
			log.Errorf("write image: %v", err)
			runtime.Close()
			os.Exit(1)
		}
		log.Infof("wrote %d bindings to %s (%d bytes)", len(img.Bindings), *imagePath, len(data))
	}

	fmt.Printf("%s: %d binding(s), %d live box(es)\n",
		ctx.Namespace().Name().GoString(), ctx.Namespace().Len(), runtime.Heap().LiveCount())

	if err := runtime.Close(); err != nil {
		log.Errorf("teardown: %v", err)
		os.Exit(1)
	}
}

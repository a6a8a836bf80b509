// Package factory builds pluggable modules, such as metrics sinks or run
// log stores, from configuration. A module is named by a type string and
// carries a map of raw settings that the registered factory decodes into
// its own struct:
//
//	reg := factory.NewRegistry[runlog.Store]()
//	reg.Register("jsonl", func(conf map[string]any) (runlog.Store, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return runlog.NewJSONLStore(c.Path)
//	})
package factory

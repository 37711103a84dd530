// Package config manages the sitesettings application configuration and the
// per-environment server inventory, stored in YAML format.
//
// Configuration is stored in the user's home directory at
// ~/.config/sitesettings/config.yaml and may be overridden with --config.
// A missing file yields the defaults from New, which target a local
// development stack.
//
// Example config.yaml:
//
//	environment: prod
//	generation: osr
//	output_root: /data/code
//	files_root: /data/files
//	lint: true
//	php_binary: php
//	atlas:
//	  url: https://atlas.example.edu/atlas
//	  username: svc_atlas
//	  password: secret
//	smtp:
//	  client_hostname: www.example.edu
//	environments:
//	  prod:
//	    base_url: https://www.example.edu
//	    database:
//	      master: db1.int.example.edu
//	      port: 3307
//	      slaves: [db2.int.example.edu]
//	    memcache_servers: [mem1.int.example.edu:11212]
//	    varnish_servers: [172.20.62.71, 172.20.62.72]
//	    varnish_control: varn1.int.example.edu:6082
//
// # Environments
//
// Environment is a closed set: local, dev, test and prod. The names
// "development", "production" and "express_local" are accepted as aliases
// and rewritten to the canonical name on load.
//
// # Thread Safety
//
// Config operations are NOT thread-safe. A loaded Config is treated as
// read-only once rendering starts.
package config

/*
Package config provides configuration management for blast-db-configuration.

Configuration is assembled from three sources with increasing precedence:
compiled-in defaults, a YAML file, and BLASTDBCONF_* environment variables.
Command-line flags are applied on top by the CLI layer.

Example file:

	generator:
	  release: "2025_03"
	  contact: "iudev@morgan.harvard.edu"
	  data_provider: "FB"
	  organisms_file: "organisms.json"

	ncbi:
	  ftp_host: "ftp.ncbi.nlm.nih.gov"
	  email: "iudev@morgan.harvard.edu"
	  organism_group: "invertebrate"
	  connect_timeout: 30s

	batch:
	  concurrency: 1
	  retry_attempts: 1

	logging:
	  level: INFO
	  format: text
*/
package config

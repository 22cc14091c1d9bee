/*
Package genomes resolves the currently published RefSeq genome assembly for
an organism on the NCBI FTP archive.

Resolution walks a fixed path scheme:

	/genomes/refseq/<group>/<Genus>_<species>/latest_assembly_versions/<GCx_accession>/

lists the accession directory (memoized per path), narrows the listing to
one sequence role with a caller-supplied pattern, and reconciles the match
against the md5checksums.txt manifest in the same directory. The result is
at most one Descriptor per (organism, role) request; absence of a matching
file or checksum is an expected outcome reported through logs, not an error.

Two tie-breaks are deliberately naive and must stay that way for
compatibility: when several accession directories or several
checksum-bearing files match, the first in listing order wins and a warning
is logged. Nothing attempts to order accessions by version.
*/
package genomes

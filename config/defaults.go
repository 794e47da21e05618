/*******************************************************************************
 * Copyright (c) 2026 Genome Research Ltd.
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

package config

// QueuePlaceholder is replaced by the user's queue name in the grid
// submission templates.
const QueuePlaceholder = "PLACEHOLDER"

const (
	DefaultQueue           = "bio"
	DefaultMinPhredScore   = 20
	DefaultMinReadLength   = 50
	DefaultMinContigLength = 250

	defaultLocalCores  = 12
	defaultGridCores   = 300
	defaultLatencyWait = 60
	defaultRestarts    = 3
	defaultWindowSize  = 5
	defaultKmerSizes   = "21,33,55,77"
	defaultJobName     = "Jovian_{name}.{jobid}"
	defaultDRMAALogDir = "logs/drmaa"

	drmaaTemplate = ` -q ` + QueuePlaceholder + ` -n {threads} -R "span[hosts=1]" -M {resources.mem_mb}`

	slurmTemplate = `sbatch -p ` + QueuePlaceholder + ` --parsable -N1 -n1 -c{threads} ` +
		`--mem={resources.mem_mb} -D . -o logs/SLURM/Jovian_{name}-{jobid}.out ` +
		`-e logs/SLURM/Jovian_{name}-{jobid}.err`

	computingGrid  = "grid"
	computingLocal = "local"

	useSingularity = "use_singularity"
	useConda       = "use_conda"
)

// LocalDatabaseDefaults returns the reference paths used in local mode when
// none have been supplied or stored.
func LocalDatabaseDefaults() ReferenceDataPaths {
	const base = "/mnt/db/Jov2/"

	return ReferenceDataPaths{
		Background:   base + "HuGo_GRCh38_NoDecoy_NoEBV/genome.fa",
		BlastNT:      base + "NT_database/nt",
		BlastTaxDB:   base + "taxdb/",
		MGKitDB:      base + "mgkit_db/",
		KronaDB:      base + "krona_db/",
		VirusHostDB:  base + "virus_host_db/virushostdb.tsv",
		NewTaxdumpDB: base + "new_taxdump/",
	}
}

// GridDatabaseDefaults returns the reference paths used in grid modes when
// none have been supplied or stored.
func GridDatabaseDefaults() ReferenceDataPaths {
	const base = "/data/BioGrid/schmitzd/20220428_databases_jov2/"

	return ReferenceDataPaths{
		Background:   base + "HuGo_GRCh38_NoDecoy_NoEBV/genome.fa",
		BlastNT:      base + "NT_database/nt",
		BlastTaxDB:   base + "taxdb/",
		MGKitDB:      base + "mgkit_db/",
		KronaDB:      base + "krona_db/",
		VirusHostDB:  base + "virus_host_db/virushostdb.tsv",
		NewTaxdumpDB: base + "new_taxdump/",
	}
}

// DatabaseDefaults returns the default table for the given Mode.
func DatabaseDefaults(m Mode) ReferenceDataPaths {
	if m.IsGrid() {
		return GridDatabaseDefaults()
	}

	return LocalDatabaseDefaults()
}

func defaultExecution(m Mode, clusterStatus string) ExecutionConfig {
	ec := ExecutionConfig{
		Mode:           m,
		Cores:          defaultLocalCores,
		LatencyWait:    defaultLatencyWait,
		UseSingularity: true,
		JobName:        defaultJobName,
		RestartTimes:   defaultRestarts,
	}

	if !m.IsGrid() {
		return ec
	}

	ec.Cores = defaultGridCores
	ec.DRMAA = drmaaTemplate
	ec.DRMAALogDir = defaultDRMAALogDir
	ec.Cluster = slurmTemplate

	if m == SLURM {
		ec.ClusterStatus = clusterStatus
	}

	return ec
}

func defaultRuleThreads() map[string]int {
	return map[string]int{
		"Alignments":                          12,
		"Filter":                              6,
		"Assemble":                            14,
		"MultiQC":                             1,
		"align_to_scaffolds_RmDup_FragLength": 4,
		"SNP_calling":                         12,
		"ORF_analysis":                        1,
		"Contig_metrics":                      1,
		"GC_content":                          1,
		"Scaffold_classification":             12,
		"mgkit_lca":                           1,
		"data_wrangling":                      1,
		"krona":                               1,
	}
}

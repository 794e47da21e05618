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

// ExecutionConfig holds the settings the workflow engine itself runs with.
type ExecutionConfig struct {
	Mode            Mode   `yaml:"execution-mode"`
	Queue           string `yaml:"queue,omitempty"`
	Cores           int    `yaml:"cores"`
	LatencyWait     int    `yaml:"latency-wait"`
	UseConda        bool   `yaml:"use-conda"`
	UseSingularity  bool   `yaml:"use-singularity"`
	SingularityArgs string `yaml:"singularity-args"`
	DryRun          bool   `yaml:"dryrun"`
	PrintShellCmds  bool   `yaml:"printshellcmds"`
	PrintReason     bool   `yaml:"printreason"`
	JobName         string `yaml:"jobname"`
	RestartTimes    int    `yaml:"restart-times"`
	DRMAA           string `yaml:"drmaa,omitempty"`
	DRMAALogDir     string `yaml:"drmaa-log-dir,omitempty"`
	Cluster         string `yaml:"cluster,omitempty"`
	ClusterStatus   string `yaml:"cluster-status,omitempty"`
}

// QCParameters are the read trimming thresholds.
type QCParameters struct {
	MinPhredScore int `yaml:"min_phred_score"`
	WindowSize    int `yaml:"window_size"`
	MinReadLength int `yaml:"min_read_length"`
}

// AssemblyParameters control scaffold assembly.
type AssemblyParameters struct {
	MinContigLength int    `yaml:"min_contig_len"`
	KmerSizes       string `yaml:"kmersizes"`
}

// PipelineParameters are the values the pipeline's rules read from their
// config file.
type PipelineParameters struct {
	SampleSheet           string             `yaml:"sample_sheet"`
	Threads               map[string]int     `yaml:"threads"`
	ComputingExecution    string             `yaml:"computing_execution"`
	UseSingularityOrConda string             `yaml:"use_singularity_or_conda"`
	MaxLocalMem           int                `yaml:"max_local_mem"`
	QC                    QCParameters       `yaml:"QC"`
	Assembly              AssemblyParameters `yaml:"Assembly"`
	DB                    ReferenceDataPaths `yaml:"db"`
}
